package record

// ValidateUniqueness fails when the candidate email or phone number belongs to
// another active record. excludeID is the record being updated, 0 on create.
// Only supplied fields are checked.
func ValidateUniqueness(candidate Payload, excludeID ID, active Records) error {
	fields := make(map[string]string)

	for _, r := range active {
		if r == nil || r.IsDeleted || (excludeID != 0 && r.ID == excludeID) {
			continue
		}
		if candidate.Email != nil && r.Email == *candidate.Email {
			fields[FieldEmail] = MsgEmailTaken
		}
		if candidate.PhoneNumber != nil && r.PhoneNumber == *candidate.PhoneNumber {
			fields[FieldPhoneNumber] = MsgPhoneTaken
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
