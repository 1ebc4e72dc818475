package main

import "foodshare-backend/cmd"

func main() {
	cmd.Run()
}
