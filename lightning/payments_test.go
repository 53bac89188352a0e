package lightning

import (
	"context"
	"errors"
	"testing"
	"time"

	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	paymentID       = "b3a1e0f2-9c1d-4e5e-8f8a-2f1d7f0c4a11"
	paymentPreimage = "107661134f21fc7c02223d50ab9eb3600bc3ffc3712423a1e47bb1f9a9dbf55f"
	testInvoice     = "lnbcrt500u1pjxyz"
)

func TestPayInvoiceKeepsPollingWithoutFailureDetail(t *testing.T) {
	api, gateway, _ := common(t)

	sentParams := map[string]string{"id": paymentID}

	gomock.InOrder(
		gateway.EXPECT().
			Call(gomock.Any(), alice, PAYINVOICE, map[string]string{"invoice": testInvoice}, gomock.Any()).
			DoAndReturn(replyJSON(t, paymentID)).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, GETSENTINFO, sentParams, gomock.Any()).
			DoAndReturn(replyWith([]byte("[]"))).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, GETSENTINFO, sentParams, gomock.Any()).
			DoAndReturn(replyWith(fixture(t, "eclair_getsentinfo_pending"))).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, GETSENTINFO, sentParams, gomock.Any()).
			DoAndReturn(replyWith(fixture(t, "eclair_getsentinfo_failed_empty"))).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, GETSENTINFO, sentParams, gomock.Any()).
			DoAndReturn(replyWith(fixture(t, "eclair_getsentinfo_failed_absent"))).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, GETSENTINFO, sentParams, gomock.Any()).
			DoAndReturn(replyWith(fixture(t, "eclair_getsentinfo_sent"))).
			Times(1),
	)

	result, err := api.PayInvoice(context.Background(), alice, testInvoice, nil)
	require.NoError(t, err)

	assert.Equal(t, paymentPreimage, result.Preimage)
	assert.Equal(t, "50000", result.Amount)
	assert.Equal(t, bobPubKey, result.Destination)
}

func TestPayInvoiceWithAmount(t *testing.T) {
	api, gateway, _ := common(t)

	sats := int64(2000)

	gomock.InOrder(
		gateway.EXPECT().
			Call(gomock.Any(), alice, PAYINVOICE, map[string]string{"invoice": testInvoice, "amountMsat": "2000000"}, gomock.Any()).
			DoAndReturn(replyJSON(t, paymentID)).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, GETSENTINFO, map[string]string{"id": paymentID}, gomock.Any()).
			DoAndReturn(replyWith(fixture(t, "eclair_getsentinfo_sent_old"))).
			Times(1),
	)

	result, err := api.PayInvoice(context.Background(), alice, testInvoice, &sats)
	require.NoError(t, err)

	assert.Equal(t, paymentPreimage, result.Preimage)
	assert.Equal(t, "2000", result.Amount)
	assert.Equal(t, carolPubKey, result.Destination)
}

func TestPayInvoiceDestinationFromInvoice(t *testing.T) {
	api, gateway, _ := common(t)

	gomock.InOrder(
		gateway.EXPECT().
			Call(gomock.Any(), alice, PAYINVOICE, map[string]string{"invoice": "lightning:" + bolt11Coffee}, gomock.Any()).
			DoAndReturn(replyJSON(t, paymentID)).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, GETSENTINFO, map[string]string{"id": paymentID}, gomock.Any()).
			DoAndReturn(replyWith(fixture(t, "eclair_getsentinfo_sent_bare"))).
			Times(1),
	)

	// the record names no destination, so it comes from the invoice itself
	result, err := api.PayInvoice(context.Background(), alice, "lightning:"+bolt11Coffee, nil)
	require.NoError(t, err)

	assert.Equal(t, paymentPreimage, result.Preimage)
	assert.Equal(t, "250000", result.Amount)
	assert.Equal(t, bolt11PayeeKey, result.Destination)
}

func TestPayInvoiceFailureStopsPolling(t *testing.T) {
	for name, expected := range map[string]string{
		"eclair_getsentinfo_failed":     "route not found",
		"eclair_getsentinfo_failed_old": "insufficient funds",
	} {
		t.Run(name, func(t *testing.T) {
			api, gateway, _ := common(t)

			gomock.InOrder(
				gateway.EXPECT().
					Call(gomock.Any(), alice, PAYINVOICE, gomock.Any(), gomock.Any()).
					DoAndReturn(replyJSON(t, paymentID)).
					Times(1),
				gateway.EXPECT().
					Call(gomock.Any(), alice, GETSENTINFO, gomock.Any(), gomock.Any()).
					DoAndReturn(replyWith(fixture(t, name))).
					Times(1),
			)

			_, err := api.PayInvoice(context.Background(), alice, testInvoice, nil)
			require.Error(t, err)

			assert.Equal(t, expected, err.Error())
			assert.ErrorIs(t, err, ErrPaymentFailed)

			var paymentErr *PaymentError
			require.True(t, errors.As(err, &paymentErr))
			assert.Equal(t, paymentID, paymentErr.ID)
		})
	}
}

func TestPayInvoiceTimeout(t *testing.T) {
	api, gateway, _ := common(t)
	api.PaymentPollInterval = 2 * time.Millisecond
	api.PaymentTimeout = 20 * time.Millisecond

	gateway.EXPECT().
		Call(gomock.Any(), alice, PAYINVOICE, gomock.Any(), gomock.Any()).
		DoAndReturn(replyJSON(t, paymentID)).
		Times(1)
	gateway.EXPECT().
		Call(gomock.Any(), alice, GETSENTINFO, gomock.Any(), gomock.Any()).
		DoAndReturn(replyWith(fixture(t, "eclair_getsentinfo_failed_empty"))).
		MinTimes(1)

	_, err := api.PayInvoice(context.Background(), alice, testInvoice, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentTimeout)
	assert.Contains(t, err.Error(), paymentID)
}

func TestPayInvoiceTimeoutReturnsLastError(t *testing.T) {
	api, gateway, _ := common(t)
	api.PaymentPollInterval = 2 * time.Millisecond
	api.PaymentTimeout = 20 * time.Millisecond

	gateway.EXPECT().
		Call(gomock.Any(), alice, PAYINVOICE, gomock.Any(), gomock.Any()).
		DoAndReturn(replyJSON(t, paymentID)).
		Times(1)
	gateway.EXPECT().
		Call(gomock.Any(), alice, GETSENTINFO, gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused")).
		MinTimes(1)

	_, err := api.PayInvoice(context.Background(), alice, testInvoice, nil)
	require.Error(t, err)
	assert.Equal(t, "connection refused", err.Error())
}

func TestPayInvoiceRejected(t *testing.T) {
	api, gateway, _ := common(t)

	gateway.EXPECT().
		Call(gomock.Any(), alice, PAYINVOICE, gomock.Any(), gomock.Any()).
		Return(errors.New("invoice has expired")).
		Times(1)

	_, err := api.PayInvoice(context.Background(), alice, testInvoice, nil)
	require.Error(t, err)
	assert.Equal(t, "invoice has expired", err.Error())
}

func TestPayInvoiceNegativeAmount(t *testing.T) {
	api, _, _ := common(t)

	sats := int64(-1)
	_, err := api.PayInvoice(context.Background(), alice, testInvoice, &sats)
	assert.ErrorIs(t, err, ErrConfiguration)
}
