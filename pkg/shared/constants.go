// pkg/shared/constants.go

package shared

const (
	AppID = "hermes"

	HermesLogDir  = "/var/log/hermes/"
	HermesLogs    = HermesLogDir + "hermes.log"
	HermesLogsPWD = "./hermes.log"
)

const (
	// Permission modes (in octal)
	DirPermStandard        = 0755
	DirPermOwnerOnly       = 0700
	FilePermStandard       = 0644
	FilePermOwnerReadWrite = 0600
	OwnerReadOnly          = 0400
)

// DefaultProbeTimeoutSeconds bounds every remote credential probe.
// Tunable, not a contract.
const DefaultProbeTimeoutSeconds = 30
