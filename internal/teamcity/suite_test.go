package teamcity_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// TestFleetGraphs is the entry point for the Ginkgo fleet specs.
func TestFleetGraphs(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fleet Graph Suite")
}

var _ = BeforeSuite(func() {
	logf.SetLogger(zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true)))
})
