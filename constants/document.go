package constants

// DocumentRole marks whether an input file is the base tender or a later
// corrigendum/addendum. Amendments are supplied in order; later ones win.
type DocumentRole string

const (
	RolePrimary   DocumentRole = "PRIMARY"
	RoleAmendment DocumentRole = "AMENDMENT"
)

// RunStatus is the canonical status for rows in the run catalog.
type RunStatus string

// Stable values (store these exact strings in the catalog).
const (
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusOK      RunStatus = "OK"      // report written
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure
)
