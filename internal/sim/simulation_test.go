package sim

import (
	"bytes"
	"context"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
)

const ambient = 293.15

func baseConfig() heat.Config {
	return heat.Config{
		GridSize:           10,
		TimeStep:           0.1,
		InitialTemperature: ambient,
		Material:           material.Copper,
	}
}

func hotSource() heat.Source {
	return heat.Source{X: 5, Y: 5, Power: 100, Temperature: heat.Kelvin(373.15)}
}

func expectUniform(g heat.Grid, temp float64) {
	for i := range g {
		for j := range g[i] {
			Expect(g[i][j].Temperature).To(Equal(temp), "cell (%d,%d)", i, j)
			Expect(g[i][j].IsHeatSource).To(BeFalse(), "cell (%d,%d)", i, j)
		}
	}
}

var _ = Describe("Simulation", func() {
	var s *Simulation

	BeforeEach(func() {
		var err error
		s, err = New(baseConfig(), nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("builds a uniform gridSize x gridSize grid", func() {
			g := s.Grid()
			Expect(g).To(HaveLen(10))
			for _, row := range g {
				Expect(row).To(HaveLen(10))
			}
			expectUniform(g, ambient)
			Expect(s.Time()).To(BeZero())
			Expect(s.Running()).To(BeFalse())
		})

		It("rejects an unknown material without building a grid", func() {
			cfg := baseConfig()
			cfg.Material = "unobtainium"
			sim, err := New(cfg, nil)
			Expect(err).To(MatchError(material.ErrUnknownMaterial))
			Expect(sim).To(BeNil())
		})

		It("deduplicates initial sources by coordinate", func() {
			sim, err := New(baseConfig(), []heat.Source{
				{X: 2, Y: 2, Power: 10},
				{X: 2, Y: 2, Power: 20},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(sim.Sources()).To(HaveLen(1))
			Expect(sim.Grid()[2][2].Power).To(Equal(20.0))
		})

		It("resolves materials from an injected registry", func() {
			reg := material.NewRegistry(map[material.ID]material.Properties{
				"tin": material.NewProperties(67, 7300, 227),
			})
			cfg := baseConfig()
			cfg.Material = "tin"
			sim, err := New(cfg, []heat.Source{hotSource()}, WithRegistry(reg))
			Expect(err).NotTo(HaveOccurred())
			_, err = sim.Step()
			Expect(err).NotTo(HaveOccurred())

			cfg.Material = material.Copper
			_, err = New(cfg, nil, WithRegistry(reg))
			Expect(err).To(MatchError(material.ErrUnknownMaterial))
		})
	})

	Describe("AddHeatSource", func() {
		It("marks the cell immediately and leaves the rest alone", func() {
			s.AddHeatSource(hotSource())

			g := s.Grid()
			Expect(g[5][5].IsHeatSource).To(BeTrue())
			Expect(g[5][5].Temperature).To(Equal(373.15))
			Expect(g[5][5].Power).To(Equal(100.0))
			for i := range g {
				for j := range g[i] {
					if i == 5 && j == 5 {
						continue
					}
					Expect(g[i][j].Temperature).To(Equal(ambient))
					Expect(g[i][j].IsHeatSource).To(BeFalse())
				}
			}
		})

		It("keeps the cell temperature when the source has none", func() {
			s.AddHeatSource(heat.Source{X: 1, Y: 1, Power: 5})
			Expect(s.Grid()[1][1].Temperature).To(Equal(ambient))
			Expect(s.Grid()[1][1].IsHeatSource).To(BeTrue())
		})

		It("replaces a source already at the same coordinate", func() {
			s.AddHeatSource(hotSource())
			s.AddHeatSource(heat.Source{X: 5, Y: 5, Power: 40, Temperature: heat.Kelvin(400)})

			Expect(s.Sources()).To(HaveLen(1))
			Expect(s.Sources()[0].Power).To(Equal(40.0))
			Expect(s.Grid()[5][5].Temperature).To(Equal(400.0))
		})

		It("accepts out-of-bounds sources without touching the grid", func() {
			before := s.Grid()
			s.AddHeatSource(heat.Source{X: 20, Y: 3, Power: 10})
			Expect(s.Sources()).To(HaveLen(1))
			Expect(s.Grid().Equal(before)).To(BeTrue())
		})

		It("does not modify a grid already handed out", func() {
			snapshot := s.Grid()
			s.AddHeatSource(hotSource())
			Expect(snapshot[5][5].IsHeatSource).To(BeFalse())
		})
	})

	Describe("RemoveHeatSource", func() {
		It("removes the source and clears the cell flags", func() {
			s.AddHeatSource(hotSource())
			s.AddHeatSource(heat.Source{X: 1, Y: 1, Power: 5})
			s.RemoveHeatSource(5, 5)

			Expect(s.Sources()).To(ConsistOf(heat.Source{X: 1, Y: 1, Power: 5}))
			c := s.Grid()[5][5]
			Expect(c.IsHeatSource).To(BeFalse())
			Expect(c.Power).To(BeZero())
			Expect(c.Temperature).To(Equal(373.15))
		})

		It("is a no-op for unknown coordinates", func() {
			s.RemoveHeatSource(99, 99)
			Expect(s.Sources()).To(BeEmpty())
		})
	})

	Describe("Step", func() {
		BeforeEach(func() {
			s.AddHeatSource(hotSource())
		})

		It("holds sources fixed and warms their neighbors", func() {
			g, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(g[5][5].Temperature).To(Equal(373.15))
			Expect(g[4][5].Temperature).To(BeNumerically(">", ambient))
			Expect(s.Time()).To(BeNumerically("~", 0.1, 1e-12))
			Expect(s.Steps()).To(Equal(1))
		})

		It("reports extremal temperatures", func() {
			_, err := s.Step()
			Expect(err).NotTo(HaveOccurred())

			hi, err := s.MaxTemperature()
			Expect(err).NotTo(HaveOccurred())
			Expect(hi).To(Equal(373.15))

			lo, err := s.MinTemperature()
			Expect(err).NotTo(HaveOccurred())
			Expect(lo).To(BeNumerically(">=", ambient))
		})

		It("never goes below the initial temperature with only heating sources", func() {
			for i := 0; i < 50; i++ {
				_, err := s.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			lo, err := s.MinTemperature()
			Expect(err).NotTo(HaveOccurred())
			Expect(lo).To(BeNumerically(">=", ambient))
		})

		It("leaves state untouched when the material is unknown", func() {
			bad := material.ID("unobtainium")
			Expect(s.UpdateConfig(ConfigPatch{Material: &bad})).To(Succeed())
			before := s.Grid()

			g, err := s.Step()
			Expect(err).To(MatchError(material.ErrUnknownMaterial))
			var stepErr *heat.StepError
			Expect(err).To(BeAssignableToTypeOf(stepErr))
			Expect(g).To(BeNil())
			Expect(s.Time()).To(BeZero())
			Expect(s.Grid().Equal(before)).To(BeTrue())
		})

		It("heats faster in copper than in silicon", func() {
			cfg := baseConfig()
			cfg.Material = material.Silicon
			si, err := New(cfg, []heat.Source{hotSource()})
			Expect(err).NotTo(HaveOccurred())

			cu, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			sg, err := si.Step()
			Expect(err).NotTo(HaveOccurred())

			Expect(cu[4][5].Temperature).To(BeNumerically(">", sg[4][5].Temperature))
		})

		It("is deterministic", func() {
			other, err := New(baseConfig(), []heat.Source{hotSource()})
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 25; i++ {
				_, err = s.Step()
				Expect(err).NotTo(HaveOccurred())
				_, err = other.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.Grid().Equal(other.Grid())).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("restores the initial state after steps and mutations", func() {
			s.AddHeatSource(hotSource())
			s.AddHeatSource(heat.Source{X: 0, Y: 9, Power: 500, Temperature: heat.Kelvin(900)})
			s.Start()
			for i := 0; i < 10; i++ {
				_, err := s.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			s.RemoveHeatSource(0, 9)

			Expect(s.Reset()).To(Succeed())
			expectUniform(s.Grid(), ambient)
			Expect(s.Sources()).To(BeEmpty())
			Expect(s.Time()).To(BeZero())
			Expect(s.Running()).To(BeFalse())

			Expect(s.Reset()).To(Succeed())
			expectUniform(s.Grid(), ambient)
		})
	})

	Describe("UpdateConfig", func() {
		It("reinitializes when the grid size changes", func() {
			s.AddHeatSource(heat.Source{X: 12, Y: 12, Power: 10, Temperature: heat.Kelvin(500)})
			_, err := s.Step()
			Expect(err).NotTo(HaveOccurred())

			size := 15
			Expect(s.UpdateConfig(ConfigPatch{GridSize: &size})).To(Succeed())
			Expect(s.Grid()).To(HaveLen(15))
			Expect(s.Config().GridSize).To(Equal(15))
			Expect(s.Time()).To(BeZero())
			Expect(s.Grid()[12][12].IsHeatSource).To(BeTrue())
			Expect(s.Grid()[12][12].Temperature).To(Equal(500.0))
		})

		It("keeps the grid for other changes", func() {
			s.AddHeatSource(hotSource())
			_, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			before := s.Grid()

			dt := 0.5
			m := material.Graphene
			Expect(s.UpdateConfig(ConfigPatch{TimeStep: &dt, Material: &m})).To(Succeed())
			Expect(s.Grid().Equal(before)).To(BeTrue())
			Expect(s.Config().TimeStep).To(Equal(0.5))
			Expect(s.Config().Material).To(Equal(material.Graphene))

			_, err = s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Time()).To(BeNumerically("~", 0.6, 1e-12))
		})

		It("selects a custom material", func() {
			m := material.Custom
			Expect(s.UpdateConfig(ConfigPatch{Material: &m, Custom: &material.Properties{K: 1, Rho: 1, C: 1}})).To(Succeed())
			_, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("extremal queries", func() {
		It("fail on an empty grid", func() {
			cfg := baseConfig()
			cfg.GridSize = 0
			empty, err := New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = empty.MaxTemperature()
			Expect(err).To(MatchError(heat.ErrEmptyGrid))
			_, err = empty.MinTemperature()
			Expect(err).To(MatchError(heat.ErrEmptyGrid))
		})
	})

	Describe("logging", func() {
		It("writes lifecycle messages to the supplied logger", func() {
			var buf bytes.Buffer
			sim, err := New(baseConfig(), nil, WithLogger(log.New(&buf, "", 0)))
			Expect(err).NotTo(HaveOccurred())
			sim.AddHeatSource(hotSource())
			Expect(buf.String()).To(ContainSubstring("initialized 10x10 grid"))
			Expect(buf.String()).To(ContainSubstring("source at (5,5)"))
		})
	})
})

type countObserver struct {
	n int
}

func (c *countObserver) Name() string                   { return "count" }
func (c *countObserver) Observe(_ heat.Grid, _ float64) { c.n++ }
func (c *countObserver) Value() float64                 { return float64(c.n) }
func (c *countObserver) Reset()                         { c.n = 0 }

var _ = Describe("Run", func() {
	It("steps the requested number of times and records each state", func() {
		s, err := New(baseConfig(), []heat.Source{hotSource()})
		Expect(err).NotTo(HaveOccurred())

		res, err := s.Run(context.Background(), 20, &countObserver{})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(20))
		Expect(res.Times).To(HaveLen(21))
		Expect(res.Max).To(HaveEach(Equal(373.15)))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 21.0))
		Expect(res.Mean[20]).To(BeNumerically(">", res.Mean[0]))
		Expect(s.Running()).To(BeFalse())
	})

	It("stops when the context is canceled", func() {
		s, err := New(baseConfig(), nil)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := s.Run(ctx, 10)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(BeZero())
		Expect(s.Time()).To(BeZero())
	})

	It("rejects negative step counts", func() {
		s, err := New(baseConfig(), nil)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Run(context.Background(), -1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one member per config in order", func() {
		cu, si := baseConfig(), baseConfig()
		si.Material = material.Silicon

		results, err := NewEnsemble([]heat.Config{cu, si}, []heat.Source{hotSource()}).
			Run(context.Background(), 10, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Mean[10]).To(BeNumerically(">", results[1].Mean[10]))
	})

	It("fails when any member fails", func() {
		bad := baseConfig()
		bad.Material = "unobtainium"
		_, err := NewEnsemble([]heat.Config{baseConfig(), bad}, nil).Run(context.Background(), 1, nil)
		Expect(err).To(MatchError(material.ErrUnknownMaterial))
	})
})
