// Command dynobj traces array storage strategy transitions and lazy regex
// result materialization.
package main

import (
	"os"
)

func main() {
	os.Exit(newRootCommand(newGlobalState()).execute())
}
