package magazine

import (
	"fmt"
	"testing"
)

func sectionWithHeights(heights ...float64) *SectionModel {
	items := make([]ItemModel, len(heights))
	for i, h := range heights {
		items[i] = NewItemModel(fmt.Sprintf("item-%d", i), ItemSizing{EstimatedHeight: h})
	}
	return NewSectionModel(SectionMetrics{Width: 100, RowSpacing: 10}, items)
}

func TestEmptySectionHeight(t *testing.T) {
	s := NewSectionModel(SectionMetrics{Width: 100, RowSpacing: 10}, nil)
	if h := s.CalculateHeight(); h != 0 {
		t.Errorf("empty section height should be 0, got %v", h)
	}
	if n := s.NumberOfRows(); n != 0 {
		t.Errorf("empty section should have no rows, got %d", n)
	}
}

func TestSingleColumnPacking(t *testing.T) {
	s := sectionWithHeights(50, 80, 60)

	want := []Rect{
		MakeRect(0, 0, 100, 50),
		MakeRect(0, 60, 100, 80),
		MakeRect(0, 150, 100, 60),
	}
	for i, w := range want {
		if got := s.FrameForItem(i); got != w {
			t.Errorf("frame %d = %v, want %v", i, got, w)
		}
	}
	if h := s.CalculateHeight(); h != 210 {
		t.Errorf("height = %v, want 210", h)
	}
	if n := s.NumberOfRows(); n != 3 {
		t.Errorf("rows = %d, want 3 (one item per row)", n)
	}
}

func TestPackingWithInsets(t *testing.T) {
	items := []ItemModel{
		NewItemModel("a", ItemSizing{EstimatedHeight: 40}),
		NewItemModel("b", ItemSizing{EstimatedHeight: 30}),
	}
	s := NewSectionModel(SectionMetrics{
		Width:      120,
		Insets:     Insets{Top: 5, Left: 8, Bottom: 7, Right: 8},
		RowSpacing: 4,
	}, items)

	if got, want := s.FrameForItem(0), MakeRect(8, 5, 104, 40); got != want {
		t.Errorf("frame 0 = %v, want %v", got, want)
	}
	if got, want := s.FrameForItem(1), MakeRect(8, 49, 104, 30); got != want {
		t.Errorf("frame 1 = %v, want %v", got, want)
	}
	// 5 + 40 + 4 + 30 + 7
	if h := s.CalculateHeight(); h != 86 {
		t.Errorf("height = %v, want 86", h)
	}
}

func TestUpdateItemHeightDeltaPropagation(t *testing.T) {
	// Rows [50, 80, 60] with spacing 10. Growing row 0 by 20 shifts
	// rows 1 and 2 down by 20 and changes nothing else.
	s := sectionWithHeights(50, 80, 60)
	s.CalculateHeight()

	if !s.UpdateItemHeight(70, 0) {
		t.Fatal("height update should report a change")
	}

	if got, want := s.FrameForItem(0), MakeRect(0, 0, 100, 70); got != want {
		t.Errorf("frame 0 = %v, want %v", got, want)
	}
	if got, want := s.FrameForItem(1), MakeRect(0, 80, 100, 80); got != want {
		t.Errorf("frame 1 = %v, want %v", got, want)
	}
	if got, want := s.FrameForItem(2), MakeRect(0, 170, 100, 60); got != want {
		t.Errorf("frame 2 = %v, want %v", got, want)
	}
	if h := s.CalculateHeight(); h != 230 {
		t.Errorf("height = %v, want 230", h)
	}
}

func TestUpdateItemHeightLeavesRowsAboveUntouched(t *testing.T) {
	s := sectionWithHeights(50, 80, 60, 40)
	before0 := s.FrameForItem(0)
	before1 := s.FrameForItem(1)

	s.UpdateItemHeight(95, 2)

	if got := s.FrameForItem(0); got != before0 {
		t.Errorf("frame 0 changed: %v -> %v", before0, got)
	}
	if got := s.FrameForItem(1); got != before1 {
		t.Errorf("frame 1 changed: %v -> %v", before1, got)
	}
	if got := s.FrameForItem(3).Origin.Y; got != before1.MaxY()+10+95+10 {
		t.Errorf("frame 3 Y = %v, want %v", got, before1.MaxY()+10+95+10)
	}
}

func TestUpdateItemHeightShrinks(t *testing.T) {
	s := sectionWithHeights(50, 80, 60)
	s.CalculateHeight()

	s.UpdateItemHeight(30, 1)

	if got, want := s.FrameForItem(2).Origin.Y, 100.0; got != want {
		t.Errorf("frame 2 Y = %v, want %v", got, want)
	}
	if h := s.CalculateHeight(); h != 160 {
		t.Errorf("height = %v, want 160", h)
	}
}

func TestHeightConvergenceIsOrderIndependent(t *testing.T) {
	updates := []struct {
		index  int
		height float64
	}{
		{2, 30}, {0, 100}, {4, 5}, {1, 10}, {3, 77},
	}
	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
	}

	var heights []float64
	var frames [][]Rect
	for _, order := range orders {
		s := sectionWithHeights(50, 80, 60, 40, 90)
		for _, u := range order {
			s.UpdateItemHeight(updates[u].height, updates[u].index)
			s.CalculateHeight() // interleave queries to exercise lazy paths
		}
		heights = append(heights, s.CalculateHeight())
		var f []Rect
		for i := 0; i < s.NumberOfItems(); i++ {
			f = append(f, s.FrameForItem(i))
		}
		frames = append(frames, f)
	}

	for i := 1; i < len(heights); i++ {
		if heights[i] != heights[0] {
			t.Errorf("order %d height = %v, want %v", i, heights[i], heights[0])
		}
		for j := range frames[i] {
			if frames[i][j] != frames[0][j] {
				t.Errorf("order %d frame %d = %v, want %v", i, j, frames[i][j], frames[0][j])
			}
		}
	}
}

func TestInsertThenDeleteRestoresFrames(t *testing.T) {
	s := sectionWithHeights(50, 80, 60)
	var before []Rect
	for i := 0; i < 3; i++ {
		before = append(before, s.FrameForItem(i))
	}

	s.Insert(NewItemModel("extra", ItemSizing{EstimatedHeight: 40}), 1)
	s.CalculateHeight()
	s.Delete(1)

	for i, w := range before {
		if got := s.FrameForItem(i); got != w {
			t.Errorf("frame %d after insert+delete = %v, want %v", i, got, w)
		}
	}
	if h := s.CalculateHeight(); h != 210 {
		t.Errorf("height after insert+delete = %v, want 210", h)
	}
}

func TestInsertMarksWatermarkAtPreviousRow(t *testing.T) {
	s := sectionWithHeights(50, 80, 60)
	s.CalculateHeight()

	// Index 1 is the first item of row 1; the edit can merge items
	// into row 0, so row 0 is the watermark.
	s.Insert(NewItemModel("x", ItemSizing{EstimatedHeight: 20}), 1)
	if s.firstInvalidatedRow != 0 {
		t.Errorf("watermark = %d, want 0", s.firstInvalidatedRow)
	}

	s.CalculateHeight()
	if s.firstInvalidatedRow != -1 {
		t.Errorf("watermark should clear after recompute, got %d", s.firstInvalidatedRow)
	}
}

func TestInsertMidRowKeepsEarlierFramesIdentical(t *testing.T) {
	s := sectionWithHeights(50, 80, 60, 40)
	f0 := s.FrameForItem(0)
	f1 := s.FrameForItem(1)

	s.Insert(NewItemModel("x", ItemSizing{EstimatedHeight: 25}), 3)

	if got := s.FrameForItem(0); got != f0 {
		t.Errorf("frame 0 changed: %v -> %v", f0, got)
	}
	if got := s.FrameForItem(1); got != f1 {
		t.Errorf("frame 1 changed: %v -> %v", f1, got)
	}
}

func TestLazyRecomputeMatchesFreshLayout(t *testing.T) {
	heights := []float64{50, 80, 60, 40, 90, 70}
	s := sectionWithHeights(heights...)
	s.UpdateItemHeight(55, 1)
	s.UpdateItemHeight(33, 4)

	s.Delete(2)
	// Query a frame well below the edit point before any full pass.
	got := s.FrameForItem(4)

	fresh := sectionWithHeights(50, 55, 40, 33, 70)
	if want := fresh.FrameForItem(4); got != want {
		t.Errorf("lazy frame = %v, fresh frame = %v", got, want)
	}
	if gh, wh := s.CalculateHeight(), fresh.CalculateHeight(); gh != wh {
		t.Errorf("lazy height = %v, fresh height = %v", gh, wh)
	}
}

func TestDeleteOnlyItemCollapsesRow(t *testing.T) {
	s := sectionWithHeights(50, 80, 60)
	s.CalculateHeight()

	s.Delete(2)
	if n := s.NumberOfRows(); n != 2 {
		t.Errorf("rows after delete = %d, want 2", n)
	}
	if h := s.CalculateHeight(); h != 140 {
		t.Errorf("height after delete = %v, want 140", h)
	}

	s.Delete(0)
	s.Delete(0)
	if h := s.CalculateHeight(); h != 0 {
		t.Errorf("height after deleting everything = %v, want 0", h)
	}
}

func TestUpdateMetricsInvalidatesEverything(t *testing.T) {
	s := sectionWithHeights(50, 80)
	s.CalculateHeight()

	m := s.Metrics()
	m.Width = 60
	s.UpdateMetrics(m)

	if s.firstInvalidatedRow != 0 {
		t.Errorf("metrics change should invalidate from row 0, got %d", s.firstInvalidatedRow)
	}
	if got := s.FrameForItem(0).Size.Width; got != 60 {
		t.Errorf("frame 0 width = %v, want 60", got)
	}
}

func TestUpdateMetricsNoChangeIsNoop(t *testing.T) {
	s := sectionWithHeights(50)
	s.CalculateHeight()
	s.UpdateMetrics(s.Metrics())
	if s.firstInvalidatedRow != -1 {
		t.Errorf("unchanged metrics should not invalidate, watermark = %d", s.firstInvalidatedRow)
	}
}

func TestReloadDiscardsPreferredHeight(t *testing.T) {
	s := sectionWithHeights(50, 80)
	s.UpdateItemHeight(120, 1)
	if got := s.FrameForItem(1).Size.Height; got != 120 {
		t.Fatalf("preferred height not applied, frame height = %v", got)
	}

	s.Reload(1, ItemSizing{EstimatedHeight: 80})
	if got := s.FrameForItem(1).Size.Height; got != 80 {
		t.Errorf("reload should reset to the estimate, frame height = %v", got)
	}
	item, _ := s.Item(1)
	if item.ID != "item-1" {
		t.Errorf("reload must keep identity, id = %q", item.ID)
	}
}

func TestIndicesInRect(t *testing.T) {
	s := sectionWithHeights(50, 80, 60) // rows at 0-50, 60-140, 150-210

	full := s.indicesInRect(MakeRect(0, 0, 100, 1000))
	if len(full) != 3 {
		t.Errorf("full rect should hit all 3 items, got %v", full)
	}

	if got := s.indicesInRect(Rect{}); got != nil {
		t.Errorf("empty rect should hit nothing, got %v", got)
	}

	// A rect covering only the gap between rows 0 and 1.
	if got := s.indicesInRect(MakeRect(0, 51, 100, 8)); got != nil {
		t.Errorf("gap rect should hit nothing, got %v", got)
	}

	mid := s.indicesInRect(MakeRect(0, 40, 100, 30))
	if len(mid) != 2 || mid[0] != 0 || mid[1] != 1 {
		t.Errorf("straddling rect should hit items 0 and 1, got %v", mid)
	}
}

func TestIndexForItem(t *testing.T) {
	s := sectionWithHeights(50, 80, 60)
	if i, ok := s.IndexForItem("item-1"); !ok || i != 1 {
		t.Errorf("IndexForItem(item-1) = %d, %v", i, ok)
	}
	if _, ok := s.IndexForItem("missing"); ok {
		t.Error("IndexForItem should miss for unknown id")
	}
}

func TestItemAccessorOutOfRange(t *testing.T) {
	s := sectionWithHeights(50)
	if _, ok := s.Item(-1); ok {
		t.Error("Item(-1) should report not found")
	}
	if _, ok := s.Item(1); ok {
		t.Error("Item(1) should report not found")
	}
}

func BenchmarkUpdateItemHeight(b *testing.B) {
	heights := make([]float64, 10000)
	for i := range heights {
		heights[i] = 40
	}
	s := sectionWithHeights(heights...)
	s.CalculateHeight()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.UpdateItemHeight(40+float64(i%60), i*31%10000)
	}
}

func BenchmarkFrameAfterTailInsert(b *testing.B) {
	heights := make([]float64, 5000)
	for i := range heights {
		heights[i] = 40
	}
	s := sectionWithHeights(heights...)
	s.CalculateHeight()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Insert(NewItemModel("x", ItemSizing{EstimatedHeight: 40}), s.NumberOfItems())
		s.FrameForItem(s.NumberOfItems() - 1)
	}
}
