package main

import "github.com/oshokin/pip-bootstrap/cmd/pip-bootstrap/cmd"

func main() {
	cmd.Execute()
}
