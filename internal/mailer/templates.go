package mailer

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

type EmailContent struct {
	Subject string
	Text    string
	HTML    string
}

type couponEmailData struct {
	UserName     string
	Code         string
	Description  string
	DiscountText string
	MinimumText  string
	ExpiresAt    string
}

var couponTextTemplate = texttemplate.Must(texttemplate.New("coupon_text").Parse(
	`Здравствуйте, {{.UserName}}!

Вам выдан купон: {{.Description}}.

Код купона: {{.Code}}
Скидка: {{.DiscountText}}
{{.MinimumText}}
Купон действителен до {{.ExpiresAt}}.

Ждем вас за покупками!`))

var couponHTMLTemplate = htmltemplate.Must(htmltemplate.New("coupon_html").Parse(
	`<html><body>
<p>Здравствуйте, {{.UserName}}!</p>
<p>Вам выдан купон: {{.Description}}.</p>
<p style="font-size:1.4em"><b>{{.Code}}</b></p>
<p>Скидка: {{.DiscountText}}<br>
{{.MinimumText}}<br>
Купон действителен до <b>{{.ExpiresAt}}</b>.</p>
<p>Ждем вас за покупками!</p>
</body></html>`))

// RenderCouponIssued собирает письмо о выдаче купона: тема, текстовая и html версии.
func RenderCouponIssued(userName string, coupon *domain.Coupon) (*EmailContent, error) {
	data := couponEmailData{
		UserName:     userName,
		Code:         coupon.Code,
		Description:  coupon.Description,
		DiscountText: discountText(coupon),
		MinimumText:  minimumText(coupon),
		ExpiresAt:    coupon.ExpiresAt.Format("02.01.2006"),
	}

	var text strings.Builder
	if err := couponTextTemplate.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("rendering coupon email text: %w", err)
	}
	var html strings.Builder
	if err := couponHTMLTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("rendering coupon email html: %w", err)
	}

	return &EmailContent{
		Subject: "Вам подарок: купон на скидку",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func discountText(coupon *domain.Coupon) string {
	if coupon.DiscountType == domain.DiscountPercentage {
		return coupon.DiscountValue.String() + "%"
	}
	return coupon.DiscountValue.StringFixed(2)
}

func minimumText(coupon *domain.Coupon) string {
	if coupon.MinimumPurchase == nil {
		return "Без минимальной суммы заказа."
	}
	return fmt.Sprintf("Минимальная сумма заказа: %s.", coupon.MinimumPurchase.StringFixed(2))
}
