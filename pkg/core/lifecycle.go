package core

import (
	"fmt"
	"slices"

	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// LifecycleKind is the coarse state of an element.
type LifecycleKind uint8

const (
	// LifecycleLive elements carry no active hide marks and no tombstone.
	LifecycleLive LifecycleKind = iota
	// LifecycleHidden elements carry at least one active hide mark.
	LifecycleHidden
	// LifecycleSoftDeleted elements carry a tombstone. Terminal.
	LifecycleSoftDeleted
	// LifecycleRemoved elements were hard-deleted; their row no longer exists.
	LifecycleRemoved
)

func (k LifecycleKind) String() string {
	switch k {
	case LifecycleLive:
		return "live"
	case LifecycleHidden:
		return "hidden"
	case LifecycleSoftDeleted:
		return "soft_deleted"
	case LifecycleRemoved:
		return "removed"
	}
	return fmt.Sprintf("LifecycleKind(%d)", uint8(k))
}

// Lifecycle is the state of an element as seen by the fold. HiddenBy is only
// set for LifecycleHidden and DeletedAt only for LifecycleSoftDeleted.
type Lifecycle struct {
	Kind      LifecycleKind
	HiddenBy  []visibility.Visibility
	DeletedAt int64
}

// Removed is the lifecycle of an element whose row is gone.
var Removed = Lifecycle{Kind: LifecycleRemoved}

// Next applies one mutation to the lifecycle. Mutations that do not affect
// the lifecycle leave it unchanged.
func (l Lifecycle) Next(m Mutation) Lifecycle {
	switch l.Kind {
	case LifecycleSoftDeleted, LifecycleRemoved:
		return l
	}

	switch m := m.(type) {
	case SoftDeleteMutation:
		return Lifecycle{Kind: LifecycleSoftDeleted, DeletedAt: m.Time}
	case MarkHiddenMutation:
		if slices.Contains(l.HiddenBy, m.HiddenVisibility) {
			return l
		}
		hidden := append(slices.Clone(l.HiddenBy), m.HiddenVisibility)
		return Lifecycle{Kind: LifecycleHidden, HiddenBy: hidden}
	case MarkVisibleMutation:
		hidden := slices.DeleteFunc(slices.Clone(l.HiddenBy), func(v visibility.Visibility) bool {
			return v == m.HiddenVisibility
		})
		if len(hidden) == 0 {
			return Lifecycle{Kind: LifecycleLive}
		}
		return Lifecycle{Kind: LifecycleHidden, HiddenBy: hidden}
	}
	return l
}

// HiddenFor reports whether one of the active hide marks is readable with
// auths.
func (l Lifecycle) HiddenFor(ev *visibility.Evaluator, auths visibility.Authorizations) (bool, error) {
	if l.Kind != LifecycleHidden {
		return false, nil
	}
	return hiddenFor(l.HiddenBy, ev, auths)
}

// IsDeleted reports whether the element is soft-deleted or removed.
func (l Lifecycle) IsDeleted() bool {
	return l.Kind == LifecycleSoftDeleted || l.Kind == LifecycleRemoved
}
