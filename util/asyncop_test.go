package util

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AsyncOp", func() {
	It("delivers while not cancelled", func() {
		op := NewAsyncOp(nil)

		delivered := false
		op.Deliver(func() { delivered = true })

		Expect(delivered).Should(BeTrue())
	})

	It("suppresses delivery after cancellation", func() {
		op := NewAsyncOp(nil)
		op.Cancel()

		delivered := false
		op.Deliver(func() { delivered = true })

		Expect(delivered).Should(BeFalse())
	})

	It("aborts the underlying work on cancel", func() {
		ctx, cancel := context.WithCancel(context.Background())

		op := NewAsyncOp(cancel)
		op.Cancel()

		Expect(ctx.Err()).Should(MatchError(context.Canceled))
	})

	It("tolerates a nil cancel function", func() {
		op := NewAsyncOp(nil)

		Expect(op.Cancel).ShouldNot(Panic())
	})
})
