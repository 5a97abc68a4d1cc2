package domain

import (
	"fmt"
)

// SuccessPolicy decides when a post whose targets have all settled counts as published.
type SuccessPolicy string

const (
	// SuccessPolicyPartial publishes the post when at least one target was published.
	SuccessPolicyPartial SuccessPolicy = "partial"
	// SuccessPolicyAll publishes the post only when every target was published.
	SuccessPolicyAll SuccessPolicy = "all"
)

// ParseSuccessPolicy converts a configuration value into a SuccessPolicy.
func ParseSuccessPolicy(s string) (SuccessPolicy, error) {
	switch SuccessPolicy(s) {
	case SuccessPolicyPartial, SuccessPolicyAll:
		return SuccessPolicy(s), nil
	case "":
		return SuccessPolicyPartial, nil
	default:
		return "", fmt.Errorf("invalid success policy %q (valid options: partial, all)", s)
	}
}

// AggregateStatus derives a post status from the full set of its target statuses.
// It depends only on the multiset of statuses, so it is order-independent and idempotent:
//
//   - any target PENDING or PUBLISHING -> PUBLISHING
//   - otherwise at least one PUBLISHED (partial) or all PUBLISHED (all) -> PUBLISHED
//   - otherwise -> FAILED
func AggregateStatus(statuses []TargetStatus, policy SuccessPolicy) PostStatus {
	var published, failed int
	for _, s := range statuses {
		switch s {
		case TargetStatusPending, TargetStatusPublishing:
			return PostStatusPublishing
		case TargetStatusPublished:
			published++
		case TargetStatusFailed:
			failed++
		}
	}

	if policy == SuccessPolicyAll {
		if published > 0 && failed == 0 {
			return PostStatusPublished
		}
		return PostStatusFailed
	}

	if published > 0 {
		return PostStatusPublished
	}
	return PostStatusFailed
}

// TargetStatuses extracts the statuses of the given targets.
func TargetStatuses(targets []*PostTarget) []TargetStatus {
	statuses := make([]TargetStatus, 0, len(targets))
	for _, t := range targets {
		statuses = append(statuses, t.Status)
	}
	return statuses
}
