package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/system"
)

type deviceLine struct {
	name, kind, static string
	states, algebraic  int
}

// report is the printable summary of one document.
type report struct {
	key           string
	basePower     float64
	baseFrequency float64
	counts        map[component.Kind]int
	total         int
	devices       []deviceLine
	islands       int
	issues        []string
	orphanBuses   []string
}

func summarize(key string, doc *system.Document) *report {
	frozen := doc.Freeze()
	r := &report{
		key:           key,
		basePower:     frozen.BasePower,
		baseFrequency: frozen.BaseFrequency,
		counts:        make(map[component.Kind]int),
	}
	for c := range frozen.Components.Iterate(component.KindAny, nil) {
		r.counts[c.Kind()]++
		r.total++
	}
	for _, d := range doc.DynamicDevices() {
		r.devices = append(r.devices, deviceLine{
			name:      d.Meta().Name,
			kind:      string(d.DeviceKind()),
			static:    d.Static(),
			states:    d.StateDimension(),
			algebraic: d.AlgebraicCount(),
		})
	}
	net := frozen.Network()
	conn := net.ValidateConnectivity()
	r.islands = len(conn.Islands)
	for _, issue := range conn.Issues {
		r.issues = append(r.issues, issue.String())
	}
	for _, b := range net.OrphanBuses() {
		r.orphanBuses = append(r.orphanBuses, b.Name)
	}
	return r
}

func (r *report) write(w io.Writer) {
	fmt.Fprintf(w, "%s: base_power=%g base_frequency=%g\n", r.key, r.basePower, r.baseFrequency)

	parts := make([]string, 0, len(component.Kinds()))
	for _, k := range component.Kinds() {
		parts = append(parts, fmt.Sprintf("%s=%d", k, r.counts[k]))
	}
	fmt.Fprintf(w, "  components: %d (%s)\n", r.total, strings.Join(parts, " "))

	for _, d := range r.devices {
		static := d.static
		if static == "" {
			static = "(orphaned)"
		}
		fmt.Fprintf(w, "  device %q %s states=%d algebraic=%d static=%s\n",
			d.name, d.kind, d.states, d.algebraic, static)
	}
	for _, name := range r.orphanBuses {
		fmt.Fprintf(w, "  orphan bus %q\n", name)
	}

	fmt.Fprintf(w, "  islands: %d\n", r.islands)
	if len(r.issues) == 0 {
		fmt.Fprintln(w, "  connectivity: ok")
		return
	}
	for _, issue := range r.issues {
		fmt.Fprintf(w, "  connectivity: %s\n", issue)
	}
}
