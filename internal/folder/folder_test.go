package folder_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docuflow/records-console/internal/folder"
	"github.com/docuflow/records-console/internal/session"
)

func TestFolder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Folder Suite")
}

var _ = Describe("Status", func() {
	It("accepts the three known states and nothing else", func() {
		Expect(folder.StatusPending.Valid()).To(BeTrue())
		Expect(folder.StatusApproved.Valid()).To(BeTrue())
		Expect(folder.StatusRejected.Valid()).To(BeTrue())
		Expect(folder.Status("archived").Valid()).To(BeFalse())
	})
})

var _ = Describe("CanModerate", func() {
	sectionHead := &session.Profile{
		ID:       "7",
		Position: &session.ProfilePosition{ID: 1, SectionHead: true},
	}
	regular := &session.Profile{
		ID:       "42",
		Position: &session.ProfilePosition{ID: 2, SectionHead: false},
	}

	It("allows a section head to moderate a pending folder", func() {
		f := &folder.Folder{ID: 1, Status: folder.StatusPending}
		Expect(folder.CanModerate(sectionHead, f)).To(BeTrue())
	})

	It("denies an operator whose position is not section head", func() {
		f := &folder.Folder{ID: 1, Status: folder.StatusPending}
		Expect(folder.CanModerate(regular, f)).To(BeFalse())
	})

	It("denies an operator without a position at all", func() {
		f := &folder.Folder{ID: 1, Status: folder.StatusPending}
		Expect(folder.CanModerate(&session.Profile{ID: "9"}, f)).To(BeFalse())
	})

	It("treats approved and rejected as terminal", func() {
		approved := &folder.Folder{ID: 1, Status: folder.StatusApproved}
		rejected := &folder.Folder{ID: 2, Status: folder.StatusRejected}
		Expect(folder.CanModerate(sectionHead, approved)).To(BeFalse())
		Expect(folder.CanModerate(sectionHead, rejected)).To(BeFalse())
	})

	It("denies when the profile is missing", func() {
		f := &folder.Folder{ID: 1, Status: folder.StatusPending}
		Expect(folder.CanModerate(nil, f)).To(BeFalse())
	})
})

var _ = Describe("Folder", func() {
	It("knows whether it is a subfolder", func() {
		parent := int64(3)
		Expect((&folder.Folder{ParentID: &parent}).IsSubfolder()).To(BeTrue())
		Expect((&folder.Folder{}).IsSubfolder()).To(BeFalse())
	})
})
