package common

import (
	"os"
	"sync"
)

const serviceName = "lattice"

var (
	serviceInstance     string
	serviceInstanceOnce sync.Once
)

func GetServiceName() string {
	return serviceName
}

func GetServiceInstance() string {
	serviceInstanceOnce.Do(func() {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serviceInstance = serviceName + "@" + hostname
	})
	return serviceInstance
}
