package main

import "github.com/frahmantamala/petshop-commerce/cmd"

func main() {
	cmd.Execute()
}
