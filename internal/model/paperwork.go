package model

// ConcernFlags is the self-reported screening block of the DWI intake form.
// A nil pointer on Paperwork means the block was never recorded; an all-false
// value is a valid "no concerns" submission.
type ConcernFlags struct {
	Alcohol      bool `json:"alcohol"`
	Drugs        bool `json:"drugs"`
	MentalHealth bool `json:"mentalHealth"`
}

// Paperwork holds the intake form. Which fields are required depends on the
// course program, see Complete.
type Paperwork struct {
	DOB                   string            `json:"dob"`
	Address               string            `json:"address"`
	EmergencyContactName  string            `json:"emergencyContactName"`
	EmergencyContactPhone string            `json:"emergencyContactPhone"`
	BAC                   string            `json:"bac"`
	Concerns              *ConcernFlags     `json:"concerns,omitempty"`
	PreTestAnswers        map[string]string `json:"preTestAnswers,omitempty"`
	NDPScreening          map[string]string `json:"ndpScreening,omitempty"`
}

// Complete evaluates the program-specific completeness rule. DWI/AEPM
// programs require the full intake set; every other course only needs the
// four basic contact fields. The rule gates both the countdown-screen button
// and whether the paperwork step is skipped outright.
func (p *Paperwork) Complete(courseName string) bool {
	if p == nil {
		return false
	}
	if IsDWIProgram(courseName) {
		return p.DOB != "" &&
			p.BAC != "" &&
			p.Concerns != nil &&
			len(p.PreTestAnswers) > 0 &&
			len(p.NDPScreening) > 0
	}
	return p.DOB != "" &&
		p.Address != "" &&
		p.EmergencyContactName != "" &&
		p.EmergencyContactPhone != ""
}
