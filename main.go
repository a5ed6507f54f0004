package main

import "github.com/chrisdamba/tripdata/cmd"

func main() {
	cmd.Execute()
}
