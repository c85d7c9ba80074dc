package simulation

import (
	"context"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/config"
	"github.com/sarchlab/advertise/datarecording"
	"github.com/sarchlab/advertise/tracing"
)

const testCatalog = `
weightedRandom:
  - id: VendingMachineAds
    weights:
      AdvertCola: 1
  - id: MedibotLines
    weights:
      MedibotHello: 1
voicelines:
  - id: AdvertCola
    message: advertisement-cola-1
  - id: MedibotHello
    message: medibot-hello
`

func mustLoadScenario(doc string) *config.Scenario {
	s, err := config.Load(strings.NewReader(doc))
	Expect(err).NotTo(HaveOccurred())

	return s
}

var _ = Describe("Simulation", func() {
	var (
		store *catalog.Store
	)

	BeforeEach(func() {
		var err error
		store, err = catalog.Load(strings.NewReader(testCatalog))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should panic without a scenario", func() {
		Expect(func() {
			MakeBuilder().WithCatalog(store).Build()
		}).To(Panic())
	})

	It("should broadcast on a jittered schedule", func() {
		scenario := mustLoadScenario(`
duration: 60
catalog: unused.yml
emitters:
  - name: VendingMachine
    voicelines: VendingMachineAds
    minimumWait: 10
    maximumWait: 10
    prewarm: false
`)

		s := MakeBuilder().
			WithScenario(scenario).
			WithCatalog(store).
			WithoutMonitoring().
			Build()
		defer s.Terminate()

		Expect(s.Run(context.Background())).To(Succeed())

		counts := s.Counts().Counts()
		Expect(counts).To(HaveLen(1))
		Expect(counts[0].Owner).To(Equal("VendingMachine"))
		Expect(counts[0].Broadcasts).To(Equal(uint64(5)))
		Expect(counts[0].MinGap).To(Equal(11.0))
		Expect(s.Engine().Now()).To(Equal(60.0))
	})

	It("should silence emitters during an outage", func() {
		scenario := mustLoadScenario(`
duration: 60
catalog: unused.yml
emitters:
  - name: VendingMachine
    voicelines: VendingMachineAds
    minimumWait: 10
    maximumWait: 10
    prewarm: false
outages:
  - group: VendingMachine
    start: 20
    end: 40
`)

		s := MakeBuilder().
			WithScenario(scenario).
			WithCatalog(store).
			WithoutMonitoring().
			Build()
		defer s.Terminate()

		Expect(s.Run(context.Background())).To(Succeed())

		counts := s.Counts().Counts()
		Expect(counts[0].Broadcasts).To(Equal(uint64(3)))
		Expect(counts[0].Cancelled).To(Equal(uint64(2)))
		Expect(s.PowerSwitch().IsPowered("VendingMachine")).To(BeTrue())
	})

	It("should keep a large group from firing in lockstep", func() {
		scenario := mustLoadScenario(`
seed: 3
duration: 1800
catalog: unused.yml
emitters:
  - name: VendingMachine
    count: 200
    voicelines: VendingMachineAds
`)

		s := MakeBuilder().
			WithScenario(scenario).
			WithCatalog(store).
			WithoutMonitoring().
			Build()
		defer s.Terminate()

		Expect(s.Run(context.Background())).To(Succeed())

		Expect(s.Counts().TotalBroadcasts()).To(BeNumerically(">=", 400))
		Expect(s.Counts().PeakSimultaneous()).To(BeNumerically("<", 20))
	})

	It("should run NPC agents", func() {
		scenario := mustLoadScenario(`
duration: 60
catalog: unused.yml
npcs:
  - name: Medibot
    count: 2
    voicelines: MedibotLines
    period: 20
`)

		s := MakeBuilder().
			WithScenario(scenario).
			WithCatalog(store).
			WithoutMonitoring().
			Build()
		defer s.Terminate()

		Expect(s.Run(context.Background())).To(Succeed())

		Expect(s.Agents()).To(HaveLen(2))
		for _, a := range s.Agents() {
			Expect(a.NumFinished()).To(Equal(uint64(4)))
			Expect(a.NumFailed()).To(BeZero())
		}
	})

	It("should record broadcasts", func() {
		scenario := mustLoadScenario(`
duration: 60
catalog: unused.yml
emitters:
  - name: VendingMachine
    voicelines: VendingMachineAds
    minimumWait: 10
    maximumWait: 10
    prewarm: false
`)

		path := filepath.Join(GinkgoT().TempDir(), "recording")

		s := MakeBuilder().
			WithScenario(scenario).
			WithCatalog(store).
			WithoutMonitoring().
			WithOutputFileName(path).
			Build()

		Expect(s.Run(context.Background())).To(Succeed())
		s.Terminate()

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.TableBroadcast, tracing.BroadcastEntry{})
		results, total, err := reader.Query(context.Background(),
			tracing.TableBroadcast,
			datarecording.QueryParams{OrderBy: "Time"})

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(5))
		Expect(results[0].(*tracing.BroadcastEntry).Time).To(Equal(11.0))
		Expect(results[0].(*tracing.BroadcastEntry).TextKey).
			To(Equal("advertisement-cola-1"))
	})
})
