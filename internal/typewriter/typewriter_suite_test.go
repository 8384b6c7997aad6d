package typewriter_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTypewriter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Typewriter Suite")
}
