package engine

type RuleFunc = func(c *CommentContext) error

// Holds the ordered rules to run for each comment.
type RuleSet struct {
	Rules []RuleFunc
}

// Executes rules in order, stopping at the first deny or exemption. Only dispatches execution, does no other pre/post processing.
func (r *RuleSet) CallRules(c *CommentContext) error {
	for _, f := range r.Rules {
		if err := f(c); err != nil {
			return err
		}
		if c.Err != nil {
			return c.Err
		}
		if c.effects.Terminal() {
			return nil
		}
	}
	return nil
}
