// SPDX-License-Identifier: MPL-2.0

// upkeep keeps a Linux system updated in one pass: refresh, upgrade,
// optional components, cleanup, and a prioritized follow-up report.
package main

import cmd "upkeep-cli/cmd/upkeep"

func main() {
	cmd.Execute()
}
