package scene

import (
	"fmt"
	"sort"
	"strings"
)

// SceneInfo describes a built-in scene for listings
type SceneInfo struct {
	ID          string
	DisplayName string
	Description string
	NeedsMesh   bool // requires BuildOptions.PLYPath
}

type builder struct {
	info  SceneInfo
	build func(BuildOptions) (*Scene, error)
}

var builtins = map[string]builder{
	"default": {
		info:  SceneInfo{Description: "Spheres of several materials on a ground sphere under a point light"},
		build: NewDefaultScene,
	},
	"cornell": {
		info:  SceneInfo{Description: "Cornell box with a quad light, a mirror sphere and a glass sphere"},
		build: NewCornellScene,
	},
	"materials": {
		info:  SceneInfo{Description: "One sphere per material model under a procedural sky"},
		build: NewMaterialsScene,
	},
	"mesh": {
		info:  SceneInfo{Description: "A PLY mesh on a floor under a quad light", NeedsMesh: true},
		build: NewMeshScene,
	},
}

// Names returns the built-in scene ids in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Infos returns the built-in scenes sorted by id
func Infos() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtins))
	for _, name := range Names() {
		info := builtins[name].info
		info.ID = name
		info.DisplayName = titleCase(name)
		infos = append(infos, info)
	}
	return infos
}

// Builtin constructs the named scene. The scene is not preprocessed.
func Builtin(name string, opts BuildOptions) (*Scene, error) {
	b, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return b.build(opts)
}

// titleCase converts "cornell-box" or "cornell_box" to "Cornell Box"
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
