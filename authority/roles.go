package authority

import "lattice/domain"

// roleOrder is the closed total order over scope roles, least privileged
// first. It is built once at process start and never mutated.
var roleOrder = []string{domain.RoleViewer, domain.RoleMember, domain.RoleManager, domain.RoleOwner}

var roleRanks = func() map[string]int {
	m := map[string]int{}
	for rank, role := range roleOrder {
		m[role] = rank
	}
	return m
}()

// Rank returns the position of a role in the role order. Higher rank
// means more privilege. The second value is false for unknown roles.
func Rank(role string) (int, bool) {
	rank, found := roleRanks[role]
	return rank, found
}

// RankAtLeast reports whether the held role ranks greater than or equal
// to the wanted role. Unknown held roles never satisfy any requirement.
func RankAtLeast(held, wanted string) bool {
	heldRank, found := roleRanks[held]
	if !found {
		return false
	}
	wantedRank, found := roleRanks[wanted]
	if !found {
		return false
	}
	return heldRank >= wantedRank
}
