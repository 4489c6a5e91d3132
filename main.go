// SPDX-License-Identifier: MPL-2.0

package main

import cmd "gpubox/cmd/gpubox"

func main() {
	cmd.Execute()
}
