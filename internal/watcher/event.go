package watcher

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Kind is the top-level tag of a change event.
type Kind int

const (
	KindOther Kind = iota
	KindCreate
	KindRemove
	KindModify
	KindAccess
)

func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindCreate:
		return "create"
	case KindRemove:
		return "remove"
	case KindModify:
		return "modify"
	case KindAccess:
		return "access"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ModifyKind refines KindModify events. It is ModifyAny for every other kind.
type ModifyKind int

const (
	ModifyAny ModifyKind = iota
	ModifyData
	ModifyMetadata
	ModifyName
)

func (m ModifyKind) String() string {
	switch m {
	case ModifyAny:
		return "any"
	case ModifyData:
		return "data"
	case ModifyMetadata:
		return "metadata"
	case ModifyName:
		return "name"
	default:
		return fmt.Sprintf("modify(%d)", int(m))
	}
}

// Event is a classified filesystem change.
type Event struct {
	Kind   Kind
	Modify ModifyKind
	Paths  []string
}

func (e Event) String() string {
	if e.Kind == KindModify {
		return fmt.Sprintf("%s(%s) %v", e.Kind, e.Modify, e.Paths)
	}
	return fmt.Sprintf("%s %v", e.Kind, e.Paths)
}

// IsCreateEvent reports whether e records a created path.
func IsCreateEvent(e Event) bool { return e.Kind == KindCreate }

// IsRemoveEvent reports whether e records a removed path.
func IsRemoveEvent(e Event) bool { return e.Kind == KindRemove }

// IsModifyEvent reports whether e is a modification of any sub-kind.
func IsModifyEvent(e Event) bool { return e.Kind == KindModify }

// IsDataModifyEvent reports whether e changed file contents.
func IsDataModifyEvent(e Event) bool { return e.Kind == KindModify && e.Modify == ModifyData }

// IsMetadataModifyEvent reports whether e changed permissions or other metadata.
func IsMetadataModifyEvent(e Event) bool {
	return e.Kind == KindModify && e.Modify == ModifyMetadata
}

// IsAccessEvent reports whether e records a read. fsnotify never produces
// these; the tag exists so callers can match on it exhaustively.
func IsAccessEvent(e Event) bool { return e.Kind == KindAccess }

// FromFsnotify classifies a raw fsnotify event. When several op bits are set
// the first of create, remove, rename, write, chmod wins.
func FromFsnotify(ev fsnotify.Event) Event {
	e := Event{Paths: []string{ev.Name}}
	switch {
	case ev.Has(fsnotify.Create):
		e.Kind = KindCreate
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		e.Kind = KindRemove
	case ev.Has(fsnotify.Write):
		e.Kind, e.Modify = KindModify, ModifyData
	case ev.Has(fsnotify.Chmod):
		e.Kind, e.Modify = KindModify, ModifyMetadata
	}
	return e
}
