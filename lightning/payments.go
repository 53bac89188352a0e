package lightning

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
)

// PayInvoice pays the invoice and waits until the payment settles.
// sats overrides the amount encoded in the invoice when not nil.
func (e *EclairAPI) PayInvoice(ctx context.Context, node *entities.Node, invoice string, sats *int64) (*PayResult, error) {
	if err := e.checkNode("PayInvoice", node); err != nil {
		return nil, err
	}

	params := map[string]string{"invoice": invoice}
	if sats != nil {
		if *sats < 0 {
			return nil, e.configError("PayInvoice", fmt.Sprintf("negative amount %d", *sats))
		}
		params["amountMsat"] = strconv.FormatUint(uint64(SatsToMsat(btcutil.Amount(*sats))), 10)
	}

	var id string
	if err := e.Gateway.Call(ctx, node, PAYINVOICE, params, &id); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty payment id", ErrInvalidResponse)
	}

	glog.V(2).Infof("Node %s: payment %s sent", node.Name, id)

	return e.trackPayment(ctx, node, id, invoice)
}

func (e *EclairAPI) trackPayment(ctx context.Context, node *entities.Node, id string, invoice string) (*PayResult, error) {
	var result *PayResult

	err := poll(ctx, fmt.Sprintf("payment %s", id), e.paymentPollSettings(), paymentPoll, func() error {
		var records []EclairSentPayment

		if err := e.Gateway.Call(ctx, node, GETSENTINFO, map[string]string{"id": id}, &records); err != nil {
			return err
		}

		record := findPayment(records, id)
		state, msg := classifyPayment(record)

		switch state {
		case PaymentSucceeded:
			result = toPayResult(record, invoice)
			return nil
		case PaymentFailed:
			return backoff.Permanent(&PaymentError{ID: id, Message: msg})
		}

		return fmt.Errorf("%w: %s is %s", ErrPaymentTimeout, id, state)
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

func toPayResult(record *EclairSentPayment, invoice string) *PayResult {
	destination := paymentDestination(record)
	if destination == "" {
		destination = invoiceDestination(invoice)
	}

	preimage := ""
	if record.Status != nil {
		preimage = record.Status.PaymentPreimage
	}

	return &PayResult{
		Preimage:    preimage,
		Amount:      FormatSats(MsatToSats(paymentAmount(record))),
		Destination: destination,
	}
}
