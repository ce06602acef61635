package core

// PowerHeuristic returns the MIS weight for strategy f with exponent 2
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic returns the MIS weight for strategy f
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 {
		return 0
	}
	return f / (f + g)
}
