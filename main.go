// shelfscan checks a reading list's want-to-read titles for borrowability
// across digital catalogs.
package main

import "github.com/shelfscan/shelfscan/cmd"

func main() {
	cmd.Execute()
}
