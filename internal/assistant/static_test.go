package assistant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticResponderRules(t *testing.T) {
	r := StaticResponder{}
	cases := []struct {
		msg  string
		want string
	}{
		{msg: "What is the PRICE of a site?", want: pricingReply()},
		{msg: "how much does it cost to reach you", want: pricingReply()},
		{msg: "Which services do you have?", want: servicesReply},
		{msg: "so what do you do", want: servicesReply},
		{msg: "How can I contact the team", want: contactReply},
		{msg: "best way to reach you?", want: contactReply},
		{msg: "Are you an AI?", want: aboutReply},
		{msg: "who built Luna", want: aboutReply},
		{msg: "I said hello", want: greetingReply},
		{msg: "", want: greetingReply},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			require.Equal(t, tc.want, r.Respond(tc.msg))
		})
	}
}

func TestPricingReplyUsesRateTable(t *testing.T) {
	text := pricingReply()
	require.Contains(t, text, "**Basic Plan: ₹3000 ($41.11)**")
	require.Contains(t, text, "**Standard Plan: ₹5000 ($72.49)**")
	require.Contains(t, text, "**Premium Plan: ₹5200+ ($75.63+)**")
	require.Contains(t, text, "₹1000/$15.00 security deposit")
	require.Contains(t, text, ContactEmail)
}

func TestInstructionsMentionPricingAndContact(t *testing.T) {
	text := Instructions()
	require.Contains(t, text, "You are Luna")
	require.Contains(t, text, "Basic Plan: ₹3000/$41.11")
	require.Contains(t, text, "₹700-₹900")
	require.Contains(t, text, ContactPhone)
}
