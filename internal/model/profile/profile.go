package profile

import "github.com/zhouzirui/sms-sim/internal/widget"

// Profile is a named set of form values used to prefill the widget.
type Profile struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	widget.Fields `yaml:",inline"`
}

// DefaultSystemMessage 默认的唤回短信提示词。
const DefaultSystemMessage = `You are a staff member texting a past customer who has not visited in a while.
Write like a real staff member sending an SMS: one or two short sentences, friendly, no emojis unless the customer uses them.
Your goal is to get them to book or stop by again. If they decline, thank them and stop.`

// Seed provides the built-in profiles.
func Seed() []Profile {
	return []Profile{
		{
			ID:   "default",
			Name: "Default",
			Fields: widget.Fields{
				BusinessName:  "Business",
				CustomerName:  "there",
				Delay:         "2",
				SystemMessage: DefaultSystemMessage,
			},
		},
		{
			ID:   "dental",
			Name: "Dental clinic recall",
			Fields: widget.Fields{
				BusinessName:  "Bright Smile Dental",
				CustomerName:  "Sarah",
				Delay:         "3",
				SystemMessage: DefaultSystemMessage,
				PromptContext: "Business: Bright Smile Dental. Last cleaning was 14 months ago. New patients and returning patients get a free whitening consult this month.",
			},
		},
		{
			ID:   "gym",
			Name: "Gym membership win-back",
			Fields: widget.Fields{
				BusinessName:  "Iron Peak Fitness",
				CustomerName:  "Mike",
				Delay:         "2.5",
				SystemMessage: DefaultSystemMessage,
				PromptContext: "Business: Iron Peak Fitness. Membership lapsed in March. Offer: first month back at half price.",
			},
		},
	}
}
