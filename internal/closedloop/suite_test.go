package closedloop

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestClosedLoopSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ClosedLoop Suite")
}
