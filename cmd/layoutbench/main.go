// Throughput probe for the layout engine: builds a synthetic feed,
// hammers it with measured-height reports and viewport queries, and
// prints rates. Width defaults to the attached terminal.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"golang.org/x/term"

	"magazine"
)

var (
	sections = flag.Int("sections", 4, "number of sections")
	items    = flag.Int("items", 2500, "items per section")
	updates  = flag.Int("updates", 200000, "height updates to apply")
	queries  = flag.Int("queries", 50000, "viewport queries to run")
	spacing  = flag.Float64("spacing", 8, "row spacing")
	seed     = flag.Int64("seed", 1, "rng seed")
)

type synthetic struct {
	sections int
	items    int
}

func (s *synthetic) NumberOfSections() int { return s.sections }

func (s *synthetic) NumberOfItems(int) int { return s.items }

func (s *synthetic) ItemID(p magazine.IndexPath) string {
	return fmt.Sprintf("%d-%d", p.Section, p.Item)
}

func (s *synthetic) ItemSizing(magazine.IndexPath) magazine.ItemSizing {
	return magazine.ItemSizing{EstimatedHeight: 44}
}

type fixedMetrics struct {
	m magazine.SectionMetrics
}

func (f *fixedMetrics) MetricsForSection(int) magazine.SectionMetrics { return f.m }

func main() {
	flag.Parse()

	width := 390.0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = float64(w)
	}

	rng := rand.New(rand.NewSource(*seed))
	data := &synthetic{sections: *sections, items: *items}
	metrics := &fixedMetrics{m: magazine.SectionMetrics{Width: width, RowSpacing: *spacing}}
	engine := magazine.NewEngine(data, metrics)

	start := time.Now()
	engine.Prepare()
	firstHeight := engine.ContentHeight(magazine.AfterUpdates)
	buildTime := time.Since(start)

	total := *sections * *items
	fmt.Printf("built %d sections x %d items (%.0f tall) in %v\n",
		*sections, *items, firstHeight, buildTime)

	start = time.Now()
	for i := 0; i < *updates; i++ {
		path := magazine.IndexPath{
			Section: rng.Intn(*sections),
			Item:    rng.Intn(*items),
		}
		engine.ReportPreferredHeight(path, 20+float64(rng.Intn(80)))
	}
	updateTime := time.Since(start)
	fmt.Printf("%d height updates in %v (%.0f/sec)\n",
		*updates, updateTime, float64(*updates)/updateTime.Seconds())

	contentHeight := engine.ContentHeight(magazine.AfterUpdates)
	viewport := 800.0

	start = time.Now()
	var visible int
	for i := 0; i < *queries; i++ {
		y := rng.Float64() * (contentHeight - viewport)
		visible += len(engine.ItemsIn(magazine.MakeRect(0, y, width, viewport), magazine.AfterUpdates))
	}
	queryTime := time.Since(start)
	fmt.Printf("%d viewport queries in %v (%.0f/sec, avg %.1f visible)\n",
		*queries, queryTime, float64(*queries)/queryTime.Seconds(),
		float64(visible)/float64(*queries))

	fmt.Printf("final content height %.0f over %d items\n", contentHeight, total)
}
