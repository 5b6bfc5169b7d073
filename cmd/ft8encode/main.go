package main

import (
	ft8modem "github.com/doismellburning/ft8modem/src"
)

func main() {
	ft8modem.EncodeMain()
}
