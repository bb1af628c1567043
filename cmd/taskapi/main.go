package main

import "github.com/Sylvio51/TaskAPI/cmd/taskapi/cmd"

func main() {
	cmd.Execute()
}
