package reporting

import (
	"sort"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
)

// TopLevelGroupName is the description of the synthetic group that
// absorbs leaves recorded directly under the root.
const TopLevelGroupName = "Top level tests"

// PropertyConflict describes one property that could not be propagated
// during normalization. An empty Key means the target group had no
// property capability at all and the donor's whole map was dropped.
type PropertyConflict struct {
	Key  string // conflicting property key, empty when nothing could attach
	From string // description of the group donating properties
	To   string // description of the group that kept its own state
}

// Flattener rewrites a result tree into the canonical three-level
// shape: root, then named groups, then leaves only. It takes ownership
// of the subtree it is given: child lists are rewritten and groups
// renamed in place so that report identity is preserved, while leaves
// pass through untouched. Property conflicts found along the way are
// logged and collected, never raised.
type Flattener struct {
	log      log.Logger
	warnings []PropertyConflict
}

// NewFlattener creates a Flattener that reports conflicts to logger.
func NewFlattener(logger log.Logger) *Flattener {
	if logger == nil {
		logger = log.New()
	}
	return &Flattener{log: logger}
}

// Warnings returns every property conflict recorded by Flatten calls on
// this Flattener, in emission order.
func (f *Flattener) Warnings() []PropertyConflict {
	return f.warnings
}

// Flatten normalizes root's subtree in place and returns the same
// group. Afterwards root's children are exclusively groups, each
// holding exclusively leaves, each named by the "/"-joined chain of
// descriptions from (but excluding) root down to the group that
// originally held its leaves. Root itself is never renamed.
func (f *Flattener) Flatten(root *types.Group) *types.Group {
	f.bucketTopLevel(root)

	normalized := make([]types.Node, 0, root.Len())
	for _, child := range root.Children() {
		normalized = append(normalized, f.normalize(child)...)
	}
	root.SetChildren(normalized)
	return root
}

// bucketTopLevel partitions root's direct children: stray leaves move
// into a synthetic reporting group placed ahead of root's existing
// groups, so the recursive pass deals in groups only. Relative order is
// preserved within both partitions.
func (f *Flattener) bucketTopLevel(root *types.Group) {
	var leaves []types.Node
	var groups []types.Node
	for _, child := range root.Children() {
		if types.IsLeaf(child) {
			leaves = append(leaves, child)
		} else {
			groups = append(groups, child)
		}
	}
	if len(leaves) == 0 {
		return
	}

	var total time.Duration
	for _, leaf := range leaves {
		total += types.AttributedDuration(leaf)
	}
	bucket := types.NewReportingGroupAt(TopLevelGroupName, root.Start())
	bucket.SetChildren(leaves)
	bucket.SetElapsed(total)

	children := make([]types.Node, 0, len(groups)+1)
	children = append(children, bucket)
	children = append(children, groups...)
	root.SetChildren(children)

	f.log.Debug("Bucketed stray top-level results", "count", len(leaves), "elapsed", total)
}

// normalize collapses node's subtree and returns the report sections it
// yields. Leaves bubble up unchanged. A group contributes its
// descendants' sections first (renamed under this group and enriched
// with its properties), then itself when any leaves surfaced at this
// level; a group left with neither vanishes from the output.
func (f *Flattener) normalize(node types.Node) []types.Node {
	group, ok := node.(*types.Group)
	if !ok {
		return []types.Node{node}
	}

	var leaves []types.Node
	var sections []types.Node
	for _, child := range group.Children() {
		for _, item := range f.normalize(child) {
			sub, ok := item.(*types.Group)
			if !ok {
				leaves = append(leaves, item)
				continue
			}
			f.propagateProperties(group, sub)
			sub.SetDescription(group.Description() + "/" + sub.Description())
			sections = append(sections, sub)
		}
	}
	if len(leaves) > 0 {
		group.SetChildren(leaves)
		sections = append(sections, group)
	}
	return sections
}

// propagateProperties copies from's properties into to. A key to
// already holds is never overwritten: the descendant's own value wins
// and the collision is recorded as a warning. A target without property
// capability drops the donor's whole map, also with a warning. Keys are
// visited in sorted order so warning emission is deterministic.
func (f *Flattener) propagateProperties(from, to *types.Group) {
	props := from.Properties()
	if len(props) == 0 {
		return
	}
	if !to.Reporting() {
		f.warnings = append(f.warnings, PropertyConflict{From: from.Description(), To: to.Description()})
		f.log.Warn("Properties cannot attach to plain group",
			"from", from.Description(), "to", to.Description())
		return
	}
	for _, key := range sortedKeys(props) {
		if _, exists := to.Property(key); exists {
			f.warnings = append(f.warnings, PropertyConflict{Key: key, From: from.Description(), To: to.Description()})
			f.log.Warn("Property already set on descendant, keeping its value",
				"key", key, "from", from.Description(), "to", to.Description())
			continue
		}
		to.SetProperty(key, props[key])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
