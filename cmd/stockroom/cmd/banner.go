package cmd

import (
	"fmt"
	"io"
)

const banner = `
  ____  _             _                                
 / ___|| |_ ___   ___| | ___ __ ___   ___  _ __ ___  
 \___ \| __/ _ \ / __| |/ / '__/ _ \ / _ \| '_ ` + "`" + ` _ \ 
  ___) | || (_) | (__|   <| | | (_) | (_) | | | | | |
 |____/ \__\___/ \___|_|\_\_|  \___/ \___/|_| |_| |_|
`

func printBanner(w io.Writer) {
	fmt.Fprintf(w, "\x1b[34m%s\x1b[0m", banner)
	fmt.Fprintf(w, "\x1b[32m  Inventory Client - Version %s\x1b[0m\n\n", Version)
}
