package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture() (*CheckoutService, *stubCourseStore, *stubPurchaseStore, *stubGateway) {
	courses := newStubCourseStore()
	purchases := newStubPurchaseStore()
	gateway := &stubGateway{orderID: "order_test_1"}
	cfg := &config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "test-secret", Currency: "INR"}
	svc := NewCheckoutService(courses, purchases, gateway, cfg)
	return svc, courses, purchases, gateway
}

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrder(t *testing.T) {
	svc, courses, purchases, gateway := newCheckoutFixture()

	buyer := studentProfile("p-buyer", "ext-buyer")
	course := &model.Course{Title: "Go 实战", Price: 499.5, IsPublished: true}
	course.ID = "c1"
	courses.add(course)

	t.Run("order carries payment fields", func(t *testing.T) {
		order, err := svc.CreateOrder(buyer, course.ID)
		require.NoError(t, err)
		assert.Equal(t, "order_test_1", order.OrderID)
		assert.Equal(t, int64(49950), order.Amount)
		assert.Equal(t, "INR", order.Currency)
		assert.Equal(t, "rzp_test_key", order.KeyID)
		assert.Equal(t, course.Title, order.Title)
		assert.Equal(t, int64(49950), gateway.lastAmount)
		assert.Equal(t, course.ID, gateway.lastReceipt)
	})

	t.Run("unpublished course is not purchasable", func(t *testing.T) {
		draft := &model.Course{Title: "草稿", Price: 100}
		draft.ID = "c-draft"
		courses.add(draft)

		_, err := svc.CreateOrder(buyer, draft.ID)
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})

	t.Run("repeat purchase is rejected", func(t *testing.T) {
		purchases.add(buyer.ExternalUserID, course.ID)
		_, err := svc.CreateOrder(buyer, course.ID)
		assert.ErrorIs(t, err, util.ErrAlreadyPurchased)
	})
}

func TestVerifyAndEnroll(t *testing.T) {
	svc, courses, purchases, _ := newCheckoutFixture()

	buyer := studentProfile("p-buyer", "ext-buyer")
	course := &model.Course{Title: "Go 实战", Price: 499, IsPublished: true}
	course.ID = "c1"
	courses.add(course)

	orderID, paymentID := "order_test_1", "pay_test_1"

	t.Run("bad signature", func(t *testing.T) {
		err := svc.VerifyAndEnroll(buyer, course.ID, orderID, paymentID, "deadbeef")
		assert.ErrorIs(t, err, util.ErrInvalidSignature)

		purchased, _ := purchases.Exists(buyer.ExternalUserID, course.ID)
		assert.False(t, purchased)
	})

	t.Run("signature over wrong payment id", func(t *testing.T) {
		err := svc.VerifyAndEnroll(buyer, course.ID, orderID, paymentID, sign(orderID, "pay_other", "test-secret"))
		assert.ErrorIs(t, err, util.ErrInvalidSignature)
	})

	t.Run("valid signature enrolls", func(t *testing.T) {
		err := svc.VerifyAndEnroll(buyer, course.ID, orderID, paymentID, sign(orderID, paymentID, "test-secret"))
		require.NoError(t, err)

		purchased, _ := purchases.Exists(buyer.ExternalUserID, course.ID)
		assert.True(t, purchased)
	})

	t.Run("repeat verification stays enrolled", func(t *testing.T) {
		err := svc.VerifyAndEnroll(buyer, course.ID, orderID, paymentID, sign(orderID, paymentID, "test-secret"))
		require.NoError(t, err)
	})

	t.Run("missing course", func(t *testing.T) {
		err := svc.VerifyAndEnroll(buyer, "nope", orderID, paymentID, sign(orderID, paymentID, "test-secret"))
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})
}
