package teamcity_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/teamcity"
	"github.com/imamik/tcstack/internal/util/naming"
)

func fleetConfig(n int, proxy bool) *config.Config {
	cfg := &config.Config{Name: "bdd", Proxy: config.ProxyConfig{Enabled: proxy}}
	for i := 1; i <= n; i++ {
		cfg.Instances = append(cfg.Instances, config.InstanceConfig{Name: fmt.Sprintf("teamcity-%d", i)})
	}
	cfg.ApplyDefaults()
	return cfg
}

// ancestors returns every node id transitively depends on.
func ancestors(g *provisioning.Graph, id string) map[string]bool {
	seen := map[string]bool{}
	var walk func(string)
	walk = func(cur string) {
		n, ok := g.Node(cur)
		Expect(ok).To(BeTrue(), "node %s exists", cur)
		for _, dep := range n.DependsOn {
			if !seen[dep] {
				seen[dep] = true
				walk(dep)
			}
		}
	}
	walk(id)
	return seen
}

var _ = Describe("Fleet graph", func() {
	DescribeTable("for a fleet of N instances",
		func(n int, proxy bool) {
			cfg := fleetConfig(n, proxy)
			fleet := teamcity.NewFleet(cfg, teamcity.Deps{})

			g, err := fleet.Graph()
			Expect(err).NotTo(HaveOccurred())

			By("building seven nodes per instance on top of the shared PostgreSQL composite")
			expected := 5 + 7*n
			if proxy {
				expected += 3
			}
			Expect(g.Len()).To(Equal(expected))

			By("ordering every server release after its role password and the whole database phase")
			for _, inst := range cfg.Instances {
				ids := teamcity.IDsFor(inst.Name)
				up := ancestors(g, ids.Release)
				Expect(up).To(HaveKey(ids.RolePassword))
				Expect(up).To(HaveKey(ids.Role))
				Expect(up).To(HaveKey(ids.Database))
				Expect(up).To(HaveKey(ids.Grant))
				Expect(up).To(HaveKey(ids.Secret))
				Expect(up).To(HaveKey(teamcity.EndpointID))
				Expect(up).To(HaveKey(teamcity.AdminPasswordID))

				grant := ancestors(g, ids.Grant)
				Expect(grant).To(HaveKey(ids.Role))
				Expect(grant).To(HaveKey(ids.Database))
			}

			By("keeping each composite's nodes out of every other instance's chain")
			for _, a := range cfg.Instances {
				up := ancestors(g, teamcity.IDsFor(a.Name).Release)
				for _, b := range cfg.Instances {
					if a.Name == b.Name {
						continue
					}
					other := teamcity.IDsFor(b.Name)
					Expect(up).NotTo(HaveKey(other.Role))
					Expect(up).NotTo(HaveKey(other.Secret))
				}
			}

			By("producing a valid order and concurrency stages")
			order, err := g.Order()
			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(HaveLen(expected))
			levels, err := g.Levels()
			Expect(err).NotTo(HaveOccurred())
			Expect(levels[0]).To(ContainElement(teamcity.AdminPasswordID))
		},
		Entry("one instance", 1, false),
		Entry("three instances behind a proxy", 3, true),
		Entry("five instances", 5, false),
	)

	It("gives distinct instances distinct names", func() {
		cfg := fleetConfig(4, false)
		seen := map[string]string{}
		for _, inst := range cfg.Instances {
			for _, name := range []string{
				naming.Role(inst.Name),
				naming.Database(inst.Name),
				naming.Namespace(inst.Name),
				naming.Release(inst.Name),
				naming.ServerDataClaim(inst.Name),
				naming.LogsClaim(inst.Name),
				teamcity.IDsFor(inst.Name).Secret,
			} {
				key := name
				Expect(seen).NotTo(HaveKey(key), "%s reused by %s", key, inst.Name)
				seen[key] = inst.Name
			}
		}
	})

	It("routes the proxy through every server release", func() {
		cfg := fleetConfig(3, true)
		g, err := teamcity.NewFleet(cfg, teamcity.Deps{}).Graph()
		Expect(err).NotTo(HaveOccurred())

		cm, ok := g.Node(naming.NodeID("configmap", cfg.Proxy.Namespace, naming.ProxyServerConfigMap))
		Expect(ok).To(BeTrue())
		for _, inst := range cfg.Instances {
			Expect(cm.DependsOn).To(ContainElement(teamcity.IDsFor(inst.Name).Release))
		}
	})

	Context("when destroying", func() {
		It("removes every server before the PostgreSQL release", func() {
			cfg := fleetConfig(2, true)
			g, err := teamcity.NewFleet(cfg, teamcity.Deps{}).DestroyGraph(true)
			Expect(err).NotTo(HaveOccurred())

			order, err := g.Order()
			Expect(err).NotTo(HaveOccurred())
			pos := map[string]int{}
			for i, id := range order {
				pos[id] = i
			}

			pgRelease := naming.NodeID("release", cfg.Postgres.Namespace, cfg.Postgres.ReleaseName)
			for _, inst := range cfg.Instances {
				ids := teamcity.IDsFor(inst.Name)
				Expect(pos[ids.Release]).To(BeNumerically("<", pos[ids.Secret]))
				Expect(pos[ids.Release]).To(BeNumerically("<", pos[ids.Database]))
				Expect(pos[ids.Database]).To(BeNumerically("<", pos[ids.Role]))
				Expect(pos[ids.Role]).To(BeNumerically("<", pos[pgRelease]))
				Expect(pos[ids.Secret]).To(BeNumerically("<", pos[ids.Namespace]))
			}
		})
	})
})
