// Command cachesim replays memory access traces against cache organizations
// and reports the hit counts.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
