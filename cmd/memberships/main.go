package main

import (
	"github.com/Overland-East-Bay/membership-tracker/internal/command"
	"github.com/Overland-East-Bay/membership-tracker/internal/command/membership"
)

func main() {
	command.Main(
		"memberships", "track airline, hotel and cruise loyalty memberships",
		membership.Commands()...,
	)
}
