package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// TileTask is one tile handed to the worker pool
type TileTask struct {
	Tile *Tile
}

// TileResult is reported back after a tile is rendered
type TileResult struct {
	TileID int
	Paths  int
}

// WorkerPool renders tiles in parallel. The scene is shared read-only and
// every tile writes a disjoint region of the image.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker renders tasks taken from the pool's queue
type Worker struct {
	ID          int
	renderer    *tileRenderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
	progress    *Progress
}

// NewWorkerPool creates numWorkers workers (runtime.NumCPU() when <= 0) with
// queues large enough to hold maxTasks tiles
func NewWorkerPool(s *scene.Scene, in integrator.Integrator, img *Image, spp, maxTasks, numWorkers int, progress *Progress) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTasks),
		resultQueue: make(chan TileResult, maxTasks),
		numWorkers:  numWorkers,
	}

	tr := &tileRenderer{scene: s, integrator: in, image: img, samplesPerPixel: spp}
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    tr,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
			progress:    progress,
		})
	}
	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop waits for queued tasks to finish and closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask queues a tile
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult returns the next completed tile; ok is false once the pool is stopped and drained
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		paths := w.renderer.renderTile(task.Tile)
		w.resultQueue <- TileResult{TileID: task.Tile.ID, Paths: paths}
		w.progress.tileDone()
	}
}

// tileRenderer shades the pixels of one tile
type tileRenderer struct {
	scene           *scene.Scene
	integrator      integrator.Integrator
	image           *Image
	samplesPerPixel int
}

// renderTile averages samplesPerPixel paths for every pixel in the tile and
// returns the number of paths traced
func (tr *tileRenderer) renderTile(tile *Tile) int {
	camera := tr.scene.Camera
	sampler := core.NewRandomSampler(tile.Random)
	height := tr.image.Height
	inv := 1 / float64(tr.samplesPerPixel)

	for row := tile.Bounds.Min.Y; row < tile.Bounds.Max.Y; row++ {
		// image row 0 is the top; camera y counts up from the bottom
		camY := height - 1 - row
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			sum := core.Vec3{}
			for i := 0; i < tr.samplesPerPixel; i++ {
				ray := camera.GetRay(x, camY, sampler.Get2D())
				sum = sum.Add(tr.integrator.Li(ray, tr.scene, sampler))
			}
			tr.image.Set(x, row, sum.Multiply(inv))
		}
	}
	return tile.Bounds.Dx() * tile.Bounds.Dy() * tr.samplesPerPixel
}
