// Command ghostcap records promiscuous-mode 802.11 captures as pcap and
// GPS-tagged access point sightings as CSV, on storage when it is mounted
// and framed over a serial transport when it is not.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
