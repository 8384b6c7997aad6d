package rain_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRain(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rain Suite")
}
