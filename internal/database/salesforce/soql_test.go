package salesforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		soql string
		want string
	}{
		{"SELECT Id FROM Account", "Account"},
		{"select   Id,Name   from   Contact where Name != null", "Contact"},
		{"SELECT Id, (SELECT Id FROM Contacts) FROM Account", "Account"},
		{"SELECT FromDate__c FROM Booking__c LIMIT 5", "Booking__c"},
		{"SELECT Id FROM Lead;", "Lead"},
		{"SELECT Id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.soql, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectName(tt.soql))
		})
	}
}

func TestSelectFields(t *testing.T) {
	fields := []string{"Id", "Name", "Region__c", "Tier__c"}
	assert.Equal(t, fields, SelectFields(fields, false))
	assert.Equal(t, []string{"Region__c", "Tier__c"}, SelectFields(fields, true))
	assert.Empty(t, SelectFields([]string{"Id"}, true))
}

func TestExpandFields(t *testing.T) {
	tests := []struct {
		name   string
		soql   string
		fields []string
		want   string
	}{
		{"all", "SELECT FIELDS(ALL) FROM Account LIMIT 10", []string{"Id", "Name"}, "SELECT Id, Name FROM Account LIMIT 10"},
		{"custom lowercase", "select fields(custom) from Account", []string{"Region__c"}, "select Region__c from Account"},
		{"no sentinel", "SELECT Id FROM Account", []string{"Name"}, "SELECT Id FROM Account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.soql
			assert.Equal(t, tt.want, ExpandFields(tt.soql, tt.fields))
			assert.Equal(t, before, tt.soql)
		})
	}
}

func TestStatementClassification(t *testing.T) {
	assert.True(t, IsSelect("  SeLeCt Id FROM Account"))
	assert.False(t, IsSelect("DELETE FROM Account"))
	assert.True(t, UsesFieldsSentinel("SELECT Fields(All) FROM Account"))
	assert.False(t, UsesFieldsSentinel("SELECT Id FROM Account"))
	assert.True(t, WantsCustomOnly("SELECT FIELDS(CUSTOM) FROM Account"))
	assert.False(t, WantsCustomOnly("SELECT FIELDS(ALL) FROM Account"))
}
