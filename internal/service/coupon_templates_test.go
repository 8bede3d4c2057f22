package service

import (
	"testing"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/stretchr/testify/suite"
)

type CouponTemplatesTestSuite struct {
	suite.Suite
}

func TestCouponTemplatesSuite(t *testing.T) {
	suite.Run(t, new(CouponTemplatesTestSuite))
}

func (s *CouponTemplatesTestSuite) TestCouponTemplateByKey() {
	cases := []struct {
		key        domain.CouponTemplateKey
		wantPrefix string
	}{
		{key: domain.CouponTemplateWelcome, wantPrefix: "WELCOME-"},
		{key: domain.CouponTemplateFirstOrder, wantPrefix: "FIRST-"},
		{key: domain.CouponTemplateReactivation, wantPrefix: "COMEBACK-"},
		{key: domain.CouponTemplateBirthday, wantPrefix: "BDAY-"},
		{key: domain.CouponTemplateLaunch, wantPrefix: "LAUNCH-"},
	}

	for _, t := range cases {
		s.Run(string(t.key), func() {
			template, ok := CouponTemplateByKey(t.key)
			s.Require().True(ok)
			s.Equal(t.key, template.Key)
			s.Equal(t.wantPrefix, template.CodePrefix)
			s.Positive(template.ExpireMonths)
		})
	}
}

func (s *CouponTemplatesTestSuite) TestCouponTemplateByKey_Unknown() {
	_, ok := CouponTemplateByKey("BLACK_FRIDAY")
	s.False(ok)
}
