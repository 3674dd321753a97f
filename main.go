package main

import "dorm-backend/commands"

func main() {
	commands.Execute()
}
