package graphql

// Operation documents understood by the remote data API.
const (
	queryAllAccounts = `
  query AllAccounts {
    allComptes {
      id
      solde
      dateCreation
      type
    }
  }`

	queryAccountsByType = `
  query AccountsByType($type: TypeCompte!) {
    comptesByType(type: $type) {
      id
      solde
      dateCreation
      type
    }
  }`

	queryTotalBalanceStats = `
  query TotalBalanceStats {
    totalSolde {
      count
      sum
      average
    }
  }`

	queryTransactionsByAccount = `
  query GetTransactions($compteId: ID!) {
    transactionsByCompte(compteId: $compteId) {
      id
      montant
      type
      dateTransaction
      description
    }
  }`

	mutationCreateAccount = `
  mutation SaveCompte($compteInput: CompteInput!) {
    saveCompte(compteInput: $compteInput) {
      id
      solde
      dateCreation
      type
    }
  }`

	mutationDeleteAccount = `
  mutation DeleteCompte($id: ID!) {
    deleteCompte(id: $id)
  }`

	mutationCreateTransaction = `
  mutation AddTransaction($transaction: TransactionInput!) {
    addTransaction(transaction: $transaction) {
      id
      montant
      type
      dateTransaction
      description
    }
  }`
)
