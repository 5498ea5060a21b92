// Command pieceworkctl tareas operativas del servicio a destajo: migraciones, limpieza de
// categorías sin precio y exportación de reportes.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
