package controller

import (
	"github.com/MinnPost/minnpost-elections-dashboard/internal/service/elections"
)

type Controller struct {
	service *elections.Service
}

func NewController(service *elections.Service) *Controller {
	return &Controller{service: service}
}
