// Package sym defines the glyphs qntx prints in front of command output.
// They are stable across the CLI, logs and documentation.
package sym

// Attestation operators, one per top-level command family.
const (
	AM = "≡" // am: configuration ("I am")
	IX = "⨳" // ix: ingest external data
	AX = "⋈" // ax: expand and classify claims
	BY = "⌬" // by: actor
	AT = "✦" // at: temporal marker
)

// Attestation building blocks, read as "subject IS predicate OF context BY actor AT time".
const (
	AS = "+" // as: assert an attestation
	IS = "=" // is: identity
	OF = "∈" // of: membership
)

// System markers.
const (
	Sync   = "⇄" // sync: merkle tree reconciliation with peers
	Hash   = "#" // content addressing
	Change = "∆" // tree root moved
)

// entry binds a glyph to its command and description.
type entry struct {
	glyph       string
	command     string
	description string
}

var registry = []entry{
	{AM, "am", "Configuration: settings and where they came from"},
	{IX, "ix", "Ingest: follow an attestation feed"},
	{AX, "ax", "Expand: claims, groups and conflict classification"},
	{BY, "by", "Actor: origin of a claim"},
	{AT, "at", "Temporal: when a claim was made"},
	{AS, "as", "Assert: emit an attestation"},
	{IS, "is", "Identity: subject equivalence"},
	{OF, "of", "Membership: the context a claim holds in"},
	{Sync, "sync", "Sync: merkle roots and diffs"},
}

// SymbolToCommand maps glyphs to their text command equivalents.
var SymbolToCommand = make(map[string]string, len(registry))

// CommandToSymbol maps text commands to their glyphs.
var CommandToSymbol = make(map[string]string, len(registry))

// CommandDescriptions provides a one-line explanation per command.
var CommandDescriptions = make(map[string]string, len(registry))

// Commands lists the text commands in display order.
var Commands []string

func init() {
	for _, e := range registry {
		SymbolToCommand[e.glyph] = e.command
		CommandToSymbol[e.command] = e.glyph
		CommandDescriptions[e.command] = e.description
		Commands = append(Commands, e.command)
	}
}

// Prefix returns s preceded by the glyph for command, or s alone if the command has none.
func Prefix(command, s string) string {
	if g, ok := CommandToSymbol[command]; ok {
		return g + " " + s
	}
	return s
}
