package mail

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderNotice(t *testing.T, leadName, opportunityName string, amount *float64) string {
	t.Helper()

	data := conversionNoticeData{
		LeadName:        leadName,
		OpportunityName: opportunityName,
	}
	if amount != nil {
		data.Amount = fmt.Sprintf("%.2f", *amount)
	}

	var body bytes.Buffer
	require.NoError(t, conversionNoticeTmpl.Execute(&body, data))
	return body.String()
}

func TestConversionNoticeBody(t *testing.T) {
	amount := 25000.0
	body := renderNotice(t, "Alice Johnson", "Acme Corp - Alice Johnson", &amount)

	assert.Contains(t, body, "Alice Johnson")
	assert.Contains(t, body, "Acme Corp - Alice Johnson")
	assert.Contains(t, body, "Estimated amount: 25000.00")
	assert.Contains(t, body, "Seller Console")
}

func TestConversionNoticeWithoutAmount(t *testing.T) {
	body := renderNotice(t, "Grace Lee", "Wayne Enterprises - Grace Lee", nil)

	assert.Contains(t, body, "Wayne Enterprises - Grace Lee")
	assert.NotContains(t, body, "Estimated amount")
}
