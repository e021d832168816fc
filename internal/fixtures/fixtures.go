// Package fixtures embeds the sample job board data used by the seeder, the
// CLI and tests.
package fixtures

import _ "embed"

// Jobs is the sample data set in the memory.Fixture format.
//
//go:embed jobs.json
var Jobs []byte
