/*
Package custtest provides mocks and helpers shared by the tests of all
extensions. None of this code should be imported outside of test
files.
*/
package custtest
