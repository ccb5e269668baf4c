package domain

// ClaimResponse pairs a seat with the claim it wants honored against
// the open claim window. A PassAction response is a decline.
type ClaimResponse struct {
	Seat   int
	Action Action
}

// claimPriority ranks claim actions: win beats kong and triplet, which
// beat runs. Kong and triplet share a rank because they can never
// compete — both need matching tiles the other claimant would also
// need, so at equal rank only seat distance decides.
func claimPriority(a Action) int {
	switch a.(type) {
	case ClaimWinAction:
		return 3
	case ClaimKongAction, ClaimTripletAction:
		return 2
	case ClaimRunAction:
		return 1
	default:
		return 0
	}
}

// ResolveClaims picks the single claim to honor among simultaneous
// responses to one discard (or robbable promotion). origin is the
// discarding/promoting seat. Ties at equal priority go to the seat
// closest after origin in turn order: the seat that would otherwise
// have waited longest. Declines never block other claims. ok is false
// when every response declines.
func ResolveClaims(origin int, responses []ClaimResponse) (ClaimResponse, bool) {
	best := ClaimResponse{Seat: -1}
	bestPriority := 0
	bestDistance := 0
	for _, r := range responses {
		p := claimPriority(r.Action)
		if p == 0 {
			continue
		}
		d := (r.Seat - origin + 4) % 4
		if p > bestPriority || (p == bestPriority && d < bestDistance) {
			best = r
			bestPriority = p
			bestDistance = d
		}
	}
	return best, bestPriority > 0
}
