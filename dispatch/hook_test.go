package dispatch

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("Scheduler hooks", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		s        *Scheduler[battleWorld]
		world    battleWorld
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		hook = NewMockHook(mockCtrl)
		s = NewScheduler[battleWorld]()
		s.AcceptHook(hook)
		world = battleWorld{}
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should fire before and after each dispatched event", func() {
		AddSystem(s, EventOnly[battleWorld](func(_ *attack) error {
			return nil
		}))

		var positions []*HookPos
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx HookCtx) {
				positions = append(positions, ctx.Pos)
				Expect(ctx.Item).To(Equal(attack{power: 4}))
			}).
			Times(2)

		Send(s, attack{power: 4})
		s.Step(&world)

		Expect(positions).To(Equal(
			[]*HookPos{HookPosBeforeEvent, HookPosAfterEvent}))
	})

	ginkgo.It("should report the outcome in the after-event info", func() {
		AddSystem(s, EventOnly[battleWorld](func(_ *attack) error {
			return ErrBreak
		}))

		var outcomes []Outcome
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx HookCtx) {
				if ctx.Pos != HookPosAfterEvent {
					return
				}
				info := ctx.Detail.(EventInfo)
				outcomes = append(outcomes, info.Outcome)
				Expect(info.ID).NotTo(BeEmpty())
			}).
			Times(2)

		Send(s, attack{})
		s.Step(&world)

		Expect(outcomes).To(Equal([]Outcome{OutcomeCancelled}))
	})

	ginkgo.It("should fire the dropped hook for unregistered types", func() {
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(Equal(HookPosEventDropped))
				info := ctx.Detail.(EventInfo)
				Expect(info.Outcome).To(Equal(OutcomeDropped))
			})

		Send(s, heal{})
		s.Step(&world)
	})
})
