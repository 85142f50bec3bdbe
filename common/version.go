package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

const (
	major = 0
	minor = 1
	patch = 1

	// Oldest version an update can be performed from. Data layout has not
	// changed since the first release, so it's the first release itself.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	// Version is the contract version, it must match VERSION file.
	Version = major*1_000_000 + minor*1_000 + patch

	// PrevVersion is the lowest version the contract can be updated from.
	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch

	// ErrVersionMismatch is thrown by CheckVersion in case of error.
	ErrVersionMismatch = "previous version mismatch"

	// ErrAlreadyUpdated is thrown by CheckVersion if current version equals
	// to the version contract is being updated from.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion panics if the contract can't be updated from the given version.
func CheckVersion(from int) {
	if from < PrevVersion {
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(PrevVersion, 10))
	}
	if from == Version {
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion appends current contract version to the list of update
// arguments.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
