package magazine

import "fmt"

// UpdateAction is the kind of a structural edit record.
type UpdateAction uint8

const (
	UpdateInsert UpdateAction = iota
	UpdateDelete
	UpdateReload
	UpdateMove
)

func (a UpdateAction) String() string {
	switch a {
	case UpdateInsert:
		return "insert"
	case UpdateDelete:
		return "delete"
	case UpdateReload:
		return "reload"
	case UpdateMove:
		return "move"
	}
	return fmt.Sprintf("UpdateAction(%d)", uint8(a))
}

// NoIndex marks the unused side of a section edit.
const NoIndex = -1

// NoPath marks the unused side of an item edit.
var NoPath = IndexPath{Section: NoIndex, Item: NoIndex}

// SectionEdit is one structural edit at section granularity. Before
// indexes into the pre-batch section list, After into the post-batch
// list; which sides are required depends on the action.
type SectionEdit struct {
	Action UpdateAction
	Before int
	After  int

	// Model is the payload for inserts and reloads. Left nil, the
	// engine builds it from its data source.
	Model *SectionModel
}

// ItemEdit is one structural edit at item granularity.
type ItemEdit struct {
	Action UpdateAction
	Before IndexPath
	After  IndexPath

	// ID and Sizing are the payload for inserts; Sizing alone for
	// reloads. A zero ID on an insert asks the engine to pull the
	// payload from its data source.
	ID     string
	Sizing ItemSizing
}

// UpdateBatch is an ordered set of structural edits applied as one
// transaction.
type UpdateBatch struct {
	Sections []SectionEdit
	Items    []ItemEdit
}

// IsEmpty reports whether the batch contains no edits.
func (b UpdateBatch) IsEmpty() bool {
	return len(b.Sections) == 0 && len(b.Items) == 0
}

// Edit record constructors. Unused sides are filled with NoIndex or
// NoPath so malformed hand-built records are detectable.

func InsertSection(after int, model *SectionModel) SectionEdit {
	return SectionEdit{Action: UpdateInsert, Before: NoIndex, After: after, Model: model}
}

func DeleteSection(before int) SectionEdit {
	return SectionEdit{Action: UpdateDelete, Before: before, After: NoIndex}
}

func ReloadSection(before int, model *SectionModel) SectionEdit {
	return SectionEdit{Action: UpdateReload, Before: before, After: NoIndex, Model: model}
}

func MoveSection(before, after int) SectionEdit {
	return SectionEdit{Action: UpdateMove, Before: before, After: after}
}

func InsertItem(after IndexPath, id string, sizing ItemSizing) ItemEdit {
	return ItemEdit{Action: UpdateInsert, Before: NoPath, After: after, ID: id, Sizing: sizing}
}

func DeleteItem(before IndexPath) ItemEdit {
	return ItemEdit{Action: UpdateDelete, Before: before, After: NoPath}
}

func ReloadItem(before IndexPath, sizing ItemSizing) ItemEdit {
	return ItemEdit{Action: UpdateReload, Before: before, After: NoPath, Sizing: sizing}
}

func MoveItem(before, after IndexPath) ItemEdit {
	return ItemEdit{Action: UpdateMove, Before: before, After: after}
}

func (e SectionEdit) validate() error {
	switch e.Action {
	case UpdateInsert:
		if e.After == NoIndex {
			return fmt.Errorf("magazine: section insert missing after index")
		}
	case UpdateDelete:
		if e.Before == NoIndex {
			return fmt.Errorf("magazine: section delete missing before index")
		}
	case UpdateReload:
		if e.Before == NoIndex {
			return fmt.Errorf("magazine: section reload missing before index")
		}
	case UpdateMove:
		if e.Before == NoIndex || e.After == NoIndex {
			return fmt.Errorf("magazine: section move requires before and after indices")
		}
	default:
		return fmt.Errorf("magazine: unknown section edit action %v", e.Action)
	}
	return nil
}

func (e ItemEdit) validate() error {
	switch e.Action {
	case UpdateInsert:
		if e.After == NoPath {
			return fmt.Errorf("magazine: item insert missing after path")
		}
	case UpdateDelete:
		if e.Before == NoPath {
			return fmt.Errorf("magazine: item delete missing before path")
		}
	case UpdateReload:
		if e.Before == NoPath {
			return fmt.Errorf("magazine: item reload missing before path")
		}
	case UpdateMove:
		if e.Before == NoPath || e.After == NoPath {
			return fmt.Errorf("magazine: item move requires before and after paths")
		}
	default:
		return fmt.Errorf("magazine: unknown item edit action %v", e.Action)
	}
	return nil
}
