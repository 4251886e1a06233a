// pkg/credentials/catalog.go

package credentials

// Tool identifiers. These appear in manifests, verification reports, and
// agent responses, so they are stable strings rather than an enum.
const (
	ToolGitHub = "github"
	ToolClaude = "claude"
	ToolCodex  = "codex"
)

// Detection sources reported in a DetectionResult.
const (
	SourceFile        = "file"
	SourceSecureStore = "secure_store"
)

// ClaudeSecureStoreKey names the macOS Keychain generic-password item that
// Claude Code stores its OAuth credentials under.
const ClaudeSecureStoreKey = "Claude Code-credentials"

// ClaudeCredentialsRelPath is the flat-file location (relative to $HOME) that
// Claude Code falls back to on hosts without a platform secure store. Export
// writes the extracted Keychain secret here so the destination tool can read
// it without any store re-injection.
const ClaudeCredentialsRelPath = ".claude/.credentials.json"

// CatalogEntry describes one supported CLI tool: where its credential state
// lives under $HOME, the sanity marker that distinguishes a real login from
// leftover config, and whether the tool participates in the required gate.
type CatalogEntry struct {
	ToolID         string
	Name           string
	LocalPaths     []string // relative to $HOME, ordered
	MarkerPath     string   // relative to $HOME
	SecureStoreKey string   // platform secure store item, empty when none
	Required       bool
}

// Catalog is the fixed set of tools hermes knows how to migrate. Detection,
// export, the token gate, and listing all read from this table; nothing
// mutates it at runtime.
var Catalog = []CatalogEntry{
	{
		ToolID:     ToolGitHub,
		Name:       "GitHub CLI",
		LocalPaths: []string{".config/gh"},
		MarkerPath: ".config/gh/hosts.yml",
		Required:   true,
	},
	{
		ToolID:         ToolClaude,
		Name:           "Claude Code",
		LocalPaths:     []string{".claude.json", ".claude"},
		MarkerPath:     ".claude.json",
		SecureStoreKey: ClaudeSecureStoreKey,
		Required:       true,
	},
	{
		ToolID:     ToolCodex,
		Name:       "Codex",
		LocalPaths: []string{".codex"},
		MarkerPath: ".codex/auth.json",
		Required:   false,
	},
}

// Lookup returns the catalog entry for toolID.
func Lookup(toolID string) (CatalogEntry, bool) {
	for _, entry := range Catalog {
		if entry.ToolID == toolID {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

// RequiredTools returns the tool IDs that must be present before remote
// provisioning is worth starting.
func RequiredTools() []string {
	var required []string
	for _, entry := range Catalog {
		if entry.Required {
			required = append(required, entry.ToolID)
		}
	}
	return required
}
