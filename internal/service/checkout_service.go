package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// CheckoutService 课程购买：下单走支付网关，回调验签后落购买记录
type CheckoutService struct {
	Courses   CourseStore
	Purchases PurchaseStore
	Gateway   PaymentGateway
	Config    *config.RazorpayConfig
}

func NewCheckoutService(courses CourseStore, purchases PurchaseStore, gateway PaymentGateway, cfg *config.RazorpayConfig) *CheckoutService {
	return &CheckoutService{
		Courses:   courses,
		Purchases: purchases,
		Gateway:   gateway,
		Config:    cfg,
	}
}

// CheckoutOrder 返回给前端发起支付所需的字段
type CheckoutOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   int64   `json:"amount"` // 最小货币单位
	Currency string  `json:"currency"`
	KeyID    string  `json:"keyId"`
	CourseID string  `json:"courseId"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
}

// CreateOrder 已发布课程才可购买，重复购买直接拒绝
func (s *CheckoutService) CreateOrder(profile *model.Profile, courseID string) (*CheckoutOrder, error) {
	course, err := s.Courses.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, util.ErrCourseNotFound
	}

	purchased, err := s.Purchases.Exists(profile.ExternalUserID, courseID)
	if err != nil {
		return nil, err
	}
	if purchased {
		return nil, util.ErrAlreadyPurchased
	}

	amount := int64(course.Price * 100)
	orderID, err := s.Gateway.CreateOrder(amount, s.Config.Currency, courseID)
	if err != nil {
		return nil, err
	}

	return &CheckoutOrder{
		OrderID:  orderID,
		Amount:   amount,
		Currency: s.Config.Currency,
		KeyID:    s.Config.KeyID,
		CourseID: courseID,
		Title:    course.Title,
		Price:    course.Price,
	}, nil
}

// VerifyAndEnroll 校验支付回执签名，通过后幂等写入购买记录
// 签名算法：HMAC-SHA256(orderId + "|" + paymentId, keySecret)
func (s *CheckoutService) VerifyAndEnroll(profile *model.Profile, courseID, orderID, paymentID, signature string) error {
	if _, err := s.Courses.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}

	if !verifySignature(orderID, paymentID, signature, s.Config.KeySecret) {
		return util.ErrInvalidSignature
	}

	return s.Purchases.Create(&model.Purchase{
		UserID:   profile.ExternalUserID,
		CourseID: courseID,
	})
}

func verifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
