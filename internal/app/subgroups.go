package app

import (
	"strings"

	"github.com/donorlab/cadence/internal/domain/model"
)

// Built-in subgroup names, in declared (and therefore output) order.
const (
	SubgroupAll           = "All"
	SubgroupOrganizations = "Organizations"
	SubgroupMonthlyDonors = "MonthlyDonors"
	SubgroupIndividuals   = "Individuals"
)

// BuiltinSubgroups returns the standard donor segments.
//
// Organizations and Individuals partition All: Individuals is defined as the
// complement of Organizations, so every transaction lands in exactly one of
// the two. MonthlyDonors overlaps freely with both.
func BuiltinSubgroups() []model.Subgroup {
	return []model.Subgroup{
		{Name: SubgroupAll, Member: func(model.Transaction) bool { return true }},
		{Name: SubgroupOrganizations, Member: isOrganization},
		{Name: SubgroupMonthlyDonors, Member: func(t model.Transaction) bool {
			return strings.Contains(t.Groups, "Monthly")
		}},
		{Name: SubgroupIndividuals, Member: func(t model.Transaction) bool {
			return !isOrganization(t)
		}},
	}
}

func isOrganization(t model.Transaction) bool {
	return strings.EqualFold(t.Kind, "Organization")
}
