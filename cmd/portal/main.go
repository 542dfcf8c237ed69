package main

import (
	"go-medical-booking/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	portal, err := bootstrap.NewPortal()
	if err != nil {
		logrus.Fatalf("Failed to initialize portal: %v", err)
	}

	portal.Run()
}
