package nonconformity_test

import (
	"worksite/bizerror"
	"worksite/domain"
	"worksite/nonconformity"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Workflow", func() {
	Describe("CheckTransition", func() {
		It("should accept every edge of the lifecycle graph", func() {
			Expect(nonconformity.CheckTransition(domain.NcStatusOpen, domain.NcStatusInProgress)).To(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusInProgress, domain.NcStatusResolved)).To(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusResolved, domain.NcStatusValidated)).To(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusResolved, domain.NcStatusInProgress)).To(BeNil())
		})

		It("should reject skipping a step", func() {
			err := nonconformity.CheckTransition(domain.NcStatusOpen, domain.NcStatusResolved)
			Expect(err).To(Equal(&bizerror.ErrInvalidTransition{From: "OPEN", To: "RESOLVED"}))

			Expect(nonconformity.CheckTransition(domain.NcStatusOpen, domain.NcStatusValidated)).ToNot(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusInProgress, domain.NcStatusValidated)).ToNot(BeNil())
		})

		It("should reject moving backward", func() {
			Expect(nonconformity.CheckTransition(domain.NcStatusInProgress, domain.NcStatusOpen)).ToNot(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusResolved, domain.NcStatusOpen)).ToNot(BeNil())
		})

		It("should treat VALIDATED as terminal", func() {
			Expect(nonconformity.CheckTransition(domain.NcStatusValidated, domain.NcStatusOpen)).ToNot(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusValidated, domain.NcStatusInProgress)).ToNot(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusValidated, domain.NcStatusResolved)).ToNot(BeNil())
		})

		It("should reject self transitions", func() {
			Expect(nonconformity.CheckTransition(domain.NcStatusOpen, domain.NcStatusOpen)).ToNot(BeNil())
			Expect(nonconformity.CheckTransition(domain.NcStatusInProgress, domain.NcStatusInProgress)).ToNot(BeNil())
		})

		It("should reject unknown statuses on either side", func() {
			Expect(nonconformity.CheckTransition("OPEN", "CLOSED")).ToNot(BeNil())
			Expect(nonconformity.CheckTransition("WAITING", "OPEN")).ToNot(BeNil())
		})
	})

	Describe("IsKnownStatus", func() {
		It("should know exactly the four lifecycle statuses", func() {
			Expect(nonconformity.IsKnownStatus("OPEN")).To(BeTrue())
			Expect(nonconformity.IsKnownStatus("IN_PROGRESS")).To(BeTrue())
			Expect(nonconformity.IsKnownStatus("RESOLVED")).To(BeTrue())
			Expect(nonconformity.IsKnownStatus("VALIDATED")).To(BeTrue())
			Expect(nonconformity.IsKnownStatus("CLOSED")).To(BeFalse())
			Expect(nonconformity.IsKnownStatus("")).To(BeFalse())
		})
	})
})
