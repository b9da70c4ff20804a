package types

import (
	"os"
	"time"
)

// Group is a named, ordered container of result Nodes. Child order is
// insertion order, and every transform in this module preserves it.
//
// A Group is either plain or reporting. Reporting groups carry a
// metadata block (properties, start time, elapsed duration, source host)
// that survives into the emitted report; plain groups only shape the
// tree. Algorithms never reach into the block directly: on plain groups
// the accessors below answer with sentinel values and the setters are
// no-ops, so callers need not distinguish the two kinds.
type Group struct {
	description string
	children    []Node
	meta        *groupMeta
}

// groupMeta is the metadata block behind a reporting Group.
type groupMeta struct {
	properties map[string]string
	start      time.Time
	elapsed    time.Duration
	host       string
	lastRecord time.Time // inter-record timing cursor, see MarkRecord
}

// NewGroup creates a plain Group.
func NewGroup(description string) *Group {
	return &Group{description: description}
}

// NewReportingGroup creates a metadata-capable Group started now on the
// local host.
func NewReportingGroup(description string) *Group {
	return NewReportingGroupAt(description, time.Now())
}

// NewReportingGroupAt creates a metadata-capable Group with an explicit
// start time. The inter-record cursor starts at the same instant, so the
// first record's attributed duration is measured from start.
func NewReportingGroupAt(description string, start time.Time) *Group {
	return &Group{
		description: description,
		meta: &groupMeta{
			start:      start,
			host:       localHost(),
			lastRecord: start,
		},
	}
}

// Description returns the group name as it will appear in the report.
func (g *Group) Description() string { return g.description }

// SetDescription renames the group.
func (g *Group) SetDescription(description string) { g.description = description }

// Reporting reports whether this group carries a metadata block.
func (g *Group) Reporting() bool { return g.meta != nil }

// Children returns the ordered child list. The slice is the group's own;
// callers outside the normalizer must treat it as read-only.
func (g *Group) Children() []Node { return g.children }

// SetChildren replaces the child list wholesale.
func (g *Group) SetChildren(children []Node) { g.children = children }

// Append adds a child at the end.
func (g *Group) Append(n Node) { g.children = append(g.children, n) }

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// Properties returns the property map, nil for plain groups. The map is
// live; writes go through SetProperty.
func (g *Group) Properties() map[string]string {
	if g.meta == nil {
		return nil
	}
	return g.meta.properties
}

// Property looks up a single property value.
func (g *Group) Property(key string) (string, bool) {
	if g.meta == nil {
		return "", false
	}
	value, ok := g.meta.properties[key]
	return value, ok
}

// SetProperty stores a property on a reporting group. Plain groups
// cannot hold properties and ignore the write.
func (g *Group) SetProperty(key, value string) {
	if g.meta == nil {
		return
	}
	if g.meta.properties == nil {
		g.meta.properties = make(map[string]string)
	}
	g.meta.properties[key] = value
}

// Start returns when the group opened. Plain groups keep no clock and
// answer with the current time.
func (g *Group) Start() time.Time {
	if g.meta == nil {
		return time.Now()
	}
	return g.meta.start
}

// SetStart overrides the recorded start time; ignored on plain groups.
func (g *Group) SetStart(t time.Time) {
	if g.meta == nil {
		return
	}
	g.meta.start = t
}

// Elapsed returns the sealed duration, zero for plain groups and for
// groups not yet closed.
func (g *Group) Elapsed() time.Duration {
	if g.meta == nil {
		return 0
	}
	return g.meta.elapsed
}

// SetElapsed seals the group duration; ignored on plain groups.
func (g *Group) SetElapsed(d time.Duration) {
	if g.meta == nil {
		return
	}
	g.meta.elapsed = d
}

// Host returns the host the results were produced on, the local
// hostname for plain groups.
func (g *Group) Host() string {
	if g.meta == nil {
		return localHost()
	}
	return g.meta.host
}

// SetHost overrides the recorded host; ignored on plain groups.
func (g *Group) SetHost(host string) {
	if g.meta == nil {
		return
	}
	g.meta.host = host
}

// MarkRecord advances the inter-record cursor to now and returns the
// elapsed time since the previous record (or since start for the first),
// clamped to zero. Plain groups keep no cursor and always return zero.
func (g *Group) MarkRecord(now time.Time) time.Duration {
	if g.meta == nil {
		return 0
	}
	d := now.Sub(g.meta.lastRecord)
	if d < 0 {
		d = 0
	}
	g.meta.lastRecord = now
	return d
}

func localHost() string {
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return host
}
